package main

import "os"

// runScripts fires one-off jobs from environment variables at startup, so a
// bulk run can be kicked off on a box without going through the API:
//
//	BULKCOMPANY=acme BULKOP=onboard BULKFILE=/tmp/new_hires.csv DRYRUN=1
func runScripts() {
	bulkFile := os.Getenv("BULKFILE")
	if bulkFile != "" {
		bulkOp := os.Getenv("BULKOP")
		bulkCompany := os.Getenv("BULKCOMPANY")
		dryRun := os.Getenv("DRYRUN") != ""

		if bulkOp == "" || bulkCompany == "" {
			ErrorLog.Println("bulk script needs BULKOP and BULKCOMPANY set")
			return
		}

		company, err := lookupCompanyByShortname(bulkCompany)
		if err != nil {
			ErrorLog.Println("bulk script couldnt look up company ", bulkCompany, ": ", err)
			return
		}

		_, err = runBulkForCompany(company, bulkOp, bulkFile, RunOptions{DryRun: dryRun})
		if err != nil {
			ErrorLog.Println("bulk script ERR! ", err)
		}
	}

	testEmail := os.Getenv("TESTEMAIL")
	if testEmail != "" {
		company := Company{Name: "Test"}
		ci := CompanyIntegration{Settings: PropertyMap{"notification_email": testEmail}}

		err := sendRunSummaryEmail(company, ci, newRunSummary(BULK_OP_UPDATE, true))
		if err != nil {
			ErrorLog.Println("test email ERR! ", err)
		}
	}
}
