package main

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"

	sendgrid "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var templates *template.Template

type sgEmailFields struct {
	From    *sgmail.Email
	To      []*sgmail.Email
	Cc      []*sgmail.Email
	Bcc     []*sgmail.Email
	Subject string
}

const (
	RUN_SUMMARY_EMAIL_TEMPLATE     = "run_summary.html"
	NEW_CREDENTIALS_EMAIL_TEMPLATE = "new_credentials.html"
)

func initEmailTemplates() {
	absPath := "/etc/opdirectory/templates/*"
	if !env.Production {
		absPath, _ = filepath.Abs("./opdirectory/templates/*")
	}

	templates = template.Must(template.ParseGlob(absPath))
}

type RunSummaryEmailBody struct {
	CompanyName string
	Operation   string
	DryRun      bool
	Total       int
	Processed   int
	Successes   int
	Failures    int
	Skipped     int
	FailedRows  []RowOutcome
}

type NewCredentialsEmailBody struct {
	CompanyName string
	Username    string
	Password    string
}

// notificationAddress is where run artifacts for a company go; falls back to
// the platform admin address when the integration has none configured.
func notificationAddress(ci CompanyIntegration) string {
	addr := getCIStringSetting(ci, "notification_email")
	if addr == "" {
		addr = passwords.ADMIN_NOTIFICATION_EMAIL_ADDRESS
	}

	return addr
}

func sendRunSummaryEmail(company Company, ci CompanyIntegration, summary RunSummary) error {
	subject := fmt.Sprintf("Bulk %s run finished: %d succeeded, %d failed", summary.Operation, summary.Successes, summary.Failures)
	if summary.DryRun {
		subject = fmt.Sprintf("Bulk %s DRY RUN finished: %d row(s) previewed", summary.Operation, summary.Processed)
	}

	emailInfo := sgEmailFields{
		From:    sgmail.NewEmail("OnePoint Directory", passwords.NO_REPLY_EMAILER_ADDRESS),
		To:      []*sgmail.Email{sgmail.NewEmail(company.Name, notificationAddress(ci))},
		Subject: subject,
	}

	body := RunSummaryEmailBody{
		CompanyName: company.Name,
		Operation:   summary.Operation,
		DryRun:      summary.DryRun,
		Total:       summary.Total,
		Processed:   summary.Processed,
		Successes:   summary.Successes,
		Failures:    summary.Failures,
		Skipped:     summary.Skipped,
		FailedRows:  summary.Failed,
	}

	return sendTemplatedEmailSendGrid(emailInfo, RUN_SUMMARY_EMAIL_TEMPLATE, body, "run_summary")
}

func sendNewCredentialsEmail(company Company, ci CompanyIntegration, username, password string) error {
	emailInfo := sgEmailFields{
		From:    sgmail.NewEmail("OnePoint Directory", passwords.NO_REPLY_EMAILER_ADDRESS),
		To:      []*sgmail.Email{sgmail.NewEmail(company.Name, notificationAddress(ci))},
		Subject: "New directory account created: " + username,
	}

	body := NewCredentialsEmailBody{
		CompanyName: company.Name,
		Username:    username,
		Password:    password,
	}

	return sendTemplatedEmailSendGrid(emailInfo, NEW_CREDENTIALS_EMAIL_TEMPLATE, body, "new_credentials")
}

func sendTemplatedEmailSendGrid(emailInfo sgEmailFields, templateToUse string, templateData interface{}, categories ...string) error {
	temp := templates.Lookup(templateToUse)
	if temp == nil {
		return errors.New("template not found: " + templateToUse)
	}

	var tpl bytes.Buffer
	if err := temp.Execute(&tpl, templateData); err != nil {
		return errors.New("template execute err: " + err.Error())
	}
	htmlContent := tpl.String()

	m := sgmail.NewV3Mail()

	m.SetFrom(emailInfo.From)

	content := sgmail.NewContent("text/html", htmlContent)
	m.AddContent(content)

	personalization := sgmail.NewPersonalization()
	personalization.AddTos(emailInfo.To...)
	personalization.AddCCs(emailInfo.Cc...)
	personalization.AddBCCs(emailInfo.Bcc...)
	personalization.Subject = emailInfo.Subject

	m.AddPersonalizations(personalization)

	m.AddCategories(categories...)

	request := sendgrid.GetRequest(passwords.SG_EMAILER_PASSWORD, "/v3/mail/send", "https://api.sendgrid.com")
	request.Method = "POST"
	request.Body = sgmail.GetRequestBody(m)
	_, err := sendgrid.API(request)
	if err != nil {
		return errors.New("err SENDGRID API request: " + err.Error())
	}

	return nil
}
