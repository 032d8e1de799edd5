package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/gocarina/gocsv"
)

const (
	BULK_OP_ONBOARD  = "onboard"
	BULK_OP_UPDATE   = "update"
	BULK_OP_OFFBOARD = "offboard"
)

// headerSet tracks which canonical columns the input actually carried, so a
// blank cell under a present column can be told apart from a column that was
// never there at all.
type headerSet map[string]bool

func (h headerSet) has(name string) bool {
	return h[name]
}

// canonicalizeHeaders rewrites the header record into canonical spellings.
// The mandatory identifier columns (UserPrincipalName, ObjectId) must match
// exactly; optional columns match case-insensitively. Anything unrecognized
// passes through untouched and is ignored by the row decoder.
func canonicalizeHeaders(operation string, raw []string) ([]string, headerSet) {
	var optional []string
	switch operation {
	case BULK_OP_ONBOARD:
		optional = onboardOptionalColumns
	case BULK_OP_UPDATE:
		optional = updateOptionalColumns
	case BULK_OP_OFFBOARD:
		optional = offboardOptionalColumns
	}

	canonical := make([]string, len(raw))
	present := headerSet{}

	for i, header := range raw {
		name := strings.TrimSpace(header)

		if name == "UserPrincipalName" || name == "ObjectId" {
			canonical[i] = name
			present[name] = true
			continue
		}

		matched := false
		for _, opt := range optional {
			if strings.EqualFold(name, opt) {
				canonical[i] = opt
				present[opt] = true
				matched = true
				break
			}
		}

		if !matched {
			canonical[i] = name
		}
	}

	return canonical, present
}

func parseStrictBool(column, value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	return false, fmt.Errorf("column %s must be true or false, got %q", column, value)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := []string{}
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}

func mapOnboardRow(row BulkOnboardRow, headers headerSet) (OnboardParams, error) {
	params := OnboardParams{
		UserPrincipalName: strings.TrimSpace(row.UserPrincipalName),
		DisplayName:       strings.TrimSpace(row.DisplayName),
		Password:          strings.TrimSpace(row.Password),
		Department:        strings.TrimSpace(row.Department),
		JobTitle:          strings.TrimSpace(row.JobTitle),
		ManagerUPN:        strings.TrimSpace(row.ManagerUPN),
	}

	if params.UserPrincipalName == "" {
		return params, errors.New("a non-blank UserPrincipalName column is required to onboard")
	}
	if params.DisplayName == "" {
		return params, errors.New("a non-blank DisplayName column is required to onboard")
	}

	if strings.TrimSpace(row.ForceChangePasswordNextLogin) != "" {
		force, err := parseStrictBool("ForceChangePasswordNextLogin", row.ForceChangePasswordNextLogin)
		if err != nil {
			return params, err
		}
		params.ForceChangePassword = &force
	}

	params.InitialGroups = splitList(row.InitialGroups)
	params.LicenseSKUs = splitList(row.LicenseSKUs)

	return params, nil
}

func mapUpdateRow(row BulkUpdateRow, headers headerSet) (UpdateParams, error) {
	params := UpdateParams{
		UserPrincipalName: strings.TrimSpace(row.UserPrincipalName),
		ObjectID:          strings.TrimSpace(row.ObjectID),
	}

	if params.UserPrincipalName == "" && params.ObjectID == "" {
		return params, errors.New("a non-blank UserPrincipalName or ObjectId column is required")
	}

	setIfPresent := func(column, value string, dest **string) {
		trimmed := strings.TrimSpace(value)
		if headers.has(column) && trimmed != "" {
			*dest = &trimmed
		}
	}

	setIfPresent("DisplayName", row.DisplayName, &params.DisplayName)
	setIfPresent("Department", row.Department, &params.Department)
	setIfPresent("JobTitle", row.JobTitle, &params.JobTitle)
	setIfPresent("OfficeLocation", row.OfficeLocation, &params.OfficeLocation)
	setIfPresent("StreetAddress", row.StreetAddress, &params.StreetAddress)
	setIfPresent("City", row.City, &params.City)
	setIfPresent("State", row.State, &params.State)
	setIfPresent("PostalCode", row.PostalCode, &params.PostalCode)
	setIfPresent("Country", row.Country, &params.Country)
	setIfPresent("MobilePhone", row.MobilePhone, &params.MobilePhone)
	setIfPresent("OfficePhone", row.OfficePhone, &params.OfficePhone)

	// manager is the nullable reference: a present column with a blank cell
	// is an explicit clear, an absent column leaves the manager alone
	if headers.has("ManagerUPN") {
		managerUPN := strings.TrimSpace(row.ManagerUPN)
		params.ManagerUPN = &managerUPN
	}

	params.GroupsToAdd = splitList(row.GroupsToAdd)
	params.GroupsToRemove = splitList(row.GroupsToRemove)
	params.LicensesToAssign = splitList(row.LicensesToAssign)
	params.LicensesToRemove = splitList(row.LicensesToRemove)

	return params, nil
}

func mapOffboardRow(row BulkOffboardRow, headers headerSet) (OffboardParams, error) {
	params := OffboardParams{
		UserPrincipalName: strings.TrimSpace(row.UserPrincipalName),
		ObjectID:          strings.TrimSpace(row.ObjectID),
		Action:            strings.TrimSpace(row.Action),
	}

	if params.UserPrincipalName == "" && params.ObjectID == "" {
		return params, errors.New("a non-blank UserPrincipalName or ObjectId column is required")
	}

	boolColumns := []struct {
		column string
		value  string
		dest   **bool
	}{
		{"RevokeSignInSessions", row.RevokeSignInSessions, &params.RevokeSessions},
		{"RemoveAllLicenses", row.RemoveAllLicenses, &params.RemoveLicenses},
		{"RemoveFromAllGroups", row.RemoveFromAllGroups, &params.RemoveFromGroups},
	}

	for _, bc := range boolColumns {
		if strings.TrimSpace(bc.value) == "" {
			continue
		}
		parsed, err := parseStrictBool(bc.column, bc.value)
		if err != nil {
			return params, err
		}
		*bc.dest = &parsed
	}

	return params, nil
}

// bulkRow is one prepared unit of work: either a mapping error to report, or
// an operation ready to invoke.
type bulkRow struct {
	identifier string
	raw        string
	mapErr     error
	invoke     func() OpResult
}

func prepareBulkRows(accessToken, operation string, header []string, records [][]string, opts RunOptions) ([]bulkRow, error) {
	canonical, headers := canonicalizeHeaders(operation, header)

	// rebuild the input with canonical headers so the decoder matches the
	// documented column names regardless of incoming case; ragged records are
	// padded or trimmed to the header width so a short row fails on its own
	// mapping, not the whole batch
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	w.Write(canonical)
	for _, rec := range records {
		if len(rec) != len(canonical) {
			fixed := make([]string, len(canonical))
			copy(fixed, rec)
			rec = fixed
		}
		w.Write(rec)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	rawRows := make([]string, len(records))
	for i, rec := range records {
		rawRows[i] = strings.Join(rec, ",")
	}

	rows := make([]bulkRow, len(records))

	switch operation {
	case BULK_OP_ONBOARD:
		parsed := []BulkOnboardRow{}
		if err := gocsv.UnmarshalBytes(buf.Bytes(), &parsed); err != nil {
			return nil, err
		}
		for i := range parsed {
			params, err := mapOnboardRow(parsed[i], headers)
			rows[i] = bulkRow{identifier: params.UserPrincipalName, raw: rawRows[i], mapErr: err}
			if err == nil {
				p := params
				rows[i].invoke = func() OpResult { return onboardUser(accessToken, p, opts) }
			}
		}
	case BULK_OP_UPDATE:
		parsed := []BulkUpdateRow{}
		if err := gocsv.UnmarshalBytes(buf.Bytes(), &parsed); err != nil {
			return nil, err
		}
		for i := range parsed {
			params, err := mapUpdateRow(parsed[i], headers)
			rows[i] = bulkRow{identifier: params.identifier(), raw: rawRows[i], mapErr: err}
			if err == nil {
				p := params
				rows[i].invoke = func() OpResult { return updateUser(accessToken, p, opts) }
			}
		}
	case BULK_OP_OFFBOARD:
		parsed := []BulkOffboardRow{}
		if err := gocsv.UnmarshalBytes(buf.Bytes(), &parsed); err != nil {
			return nil, err
		}
		for i := range parsed {
			params, err := mapOffboardRow(parsed[i], headers)
			rows[i] = bulkRow{identifier: params.identifier(), raw: rawRows[i], mapErr: err}
			if err == nil {
				p := params
				rows[i].invoke = func() OpResult { return offboardUser(accessToken, p, opts) }
			}
		}
	default:
		return nil, errors.New("unknown bulk operation " + operation)
	}

	return rows, nil
}

// runBulkLifecycle drives one lifecycle operation across every row of a CSV
// input, strictly in file order, one outstanding directory call at a time.
// A row failing never stops the batch; only an unreadable input, an unknown
// operation, or a missing session aborts before any row is processed.
func runBulkLifecycle(accessToken, operation, filePath string, opts RunOptions) RunSummary {
	summary := newRunSummary(operation, opts.DryRun)

	if operation != BULK_OP_ONBOARD && operation != BULK_OP_UPDATE && operation != BULK_OP_OFFBOARD {
		ErrorLog.Println("bulk run aborted, unknown operation: ", operation)
		return summary
	}

	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		ErrorLog.Println("bulk run aborted, could not read input ", filePath, ": ", err)
		return summary
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	allRecords, err := r.ReadAll()
	if err != nil {
		ErrorLog.Println("bulk run aborted, could not parse input ", filePath, ": ", err)
		return summary
	}
	if len(allRecords) < 1 {
		ErrorLog.Println("bulk run aborted, input ", filePath, " has no header row")
		return summary
	}

	header := allRecords[0]
	records := allRecords[1:]
	summary.Total = len(records)

	if summary.Total == 0 {
		InfoLog.Println("bulk ", operation, " input ", filePath, " carried no data rows")
		return summary
	}

	rows, err := prepareBulkRows(accessToken, operation, header, records, opts)
	if err != nil {
		ErrorLog.Println("bulk run aborted, could not prepare rows: ", err)
		return summary
	}

	InfoLog.Printf("bulk %s run %s starting: %d row(s), dry run: %t\n", operation, summary.RunID, summary.Total, opts.DryRun)

	for i, row := range rows {
		summary.Processed++
		rowNum := i + 1

		if row.mapErr != nil {
			recordRowFailure(&summary, rowNum, row.identifier, row.raw, LC_FAILED_LABEL, row.mapErr.Error())
			continue
		}

		result := row.invoke()
		classifyRowResult(&summary, operation, rowNum, row, result)
	}

	logRunSummary(summary)

	return summary
}

func classifyRowResult(summary *RunSummary, operation string, rowNum int, row bulkRow, result OpResult) {
	identifier := row.identifier
	if result.UPN != "" {
		identifier = result.UPN
	}

	switch result.Status {
	case LC_SUCCESS_LABEL:
		// onboard and update must hand back a concrete record; offboard
		// reports through its status alone
		if operation != BULK_OP_OFFBOARD && (result.User == nil || result.User.ID == "") {
			WarnLog.Printf("row %d (%s): non-success status returned\n", rowNum, identifier)
			recordRowFailure(summary, rowNum, identifier, row.raw, LC_WARNING_LABEL, "non-success status returned")
			return
		}

		summary.Successes++
		InfoLog.Printf("row %d (%s): %s\n", rowNum, identifier, result.Detail)
	case LC_SKIPPED_LABEL:
		summary.Skipped++
		WarnLog.Printf("row %d (%s): skipped: %s\n", rowNum, identifier, result.Detail)
		recordRowFailure(summary, rowNum, identifier, row.raw, LC_SKIPPED_LABEL, result.Detail)
	case LC_WARNING_LABEL:
		WarnLog.Printf("row %d (%s): non-success status returned\n", rowNum, identifier)
		recordRowFailure(summary, rowNum, identifier, row.raw, LC_WARNING_LABEL, "non-success status returned")
	default:
		ErrorLog.Printf("row %d (%s): %s\n", rowNum, identifier, result.Detail)
		recordRowFailure(summary, rowNum, identifier, row.raw, LC_FAILED_LABEL, result.Detail)
	}
}

func recordRowFailure(summary *RunSummary, rowNum int, identifier, raw string, status OpStatus, detail string) {
	summary.Failures++
	summary.Failed = append(summary.Failed, RowOutcome{
		Row:        rowNum,
		Identifier: identifier,
		Status:     status,
		Detail:     detail,
		Raw:        raw,
	})
}

func logRunSummary(summary RunSummary) {
	InfoLog.Printf("bulk %s run %s finished: %d total, %d processed, %d succeeded, %d failed (%d skipped)\n",
		summary.Operation, summary.RunID, summary.Total, summary.Processed,
		summary.Successes, summary.Failures, summary.Skipped)

	if len(summary.Failed) == 0 {
		return
	}

	InfoLog.Println("failed rows:")
	for _, outcome := range summary.Failed {
		InfoLog.Printf("  row %d [%s] %s: %s\n", outcome.Row, outcome.Status, outcome.Identifier, outcome.Detail)
	}
}

// runBulkForCompany wraps the engine with the per-company preconditions and
// the post-run artifacts (summary email, archive).
func runBulkForCompany(company Company, operation, filePath string, opts RunOptions) (RunSummary, error) {
	ci, err := getCompanyIntegrationByIntegrationString(graphIntegrationsURL, company.ID)
	if err != nil {
		ErrorLog.Println("runBulkForCompany couldnt look up company integration: ", err)
		return newRunSummary(operation, opts.DryRun), errors.New("Directory integration not configured for this company.")
	}

	if !checkIntegrationEnabled(ci) {
		ErrorLog.Println("runBulkForCompany but integration disabled for ", company.ShortName)
		return newRunSummary(operation, opts.DryRun), errors.New("Directory integration is disabled.")
	}

	if ci.Status != "connected" {
		ErrorLog.Println("runBulkForCompany but not connected for ", company.ShortName)
		return newRunSummary(operation, opts.DryRun), errors.New("Directory integration is not connected.")
	}

	accessToken, err := getAccessToken(ci)
	if err != nil {
		ErrorLog.Println("runBulkForCompany getAccessToken err: ", err)
		return newRunSummary(operation, opts.DryRun), errors.New("Could not authenticate with the directory, please reconnect.")
	}

	summary := runBulkLifecycle(accessToken, operation, filePath, opts)

	if err := sendRunSummaryEmail(company, ci, summary); err != nil {
		WarnLog.Println("runBulkForCompany summary email err: ", err)
	}

	if env.Production {
		if err := archiveRunSummary(company, summary); err != nil {
			WarnLog.Println("runBulkForCompany archive err: ", err)
		}
	}

	return summary, nil
}
