package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func registerLifecycleRoutes(router *gin.Engine) {
	router.POST("/api/lifecycle/onboard", onboardHandler)
	router.POST("/api/lifecycle/update", updateHandler)
	router.POST("/api/lifecycle/offboard", offboardHandler)
	router.POST("/api/lifecycle/bulk", bulkHandler)
}

// connectedCI resolves the caller's company and its connected directory
// integration, or writes the error response itself.
func connectedCI(c *gin.Context) (Company, CompanyIntegration, string, bool) {
	company, err := lookupCompany(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not authorized"})
		return Company{}, CompanyIntegration{}, "", false
	}

	ci, err := getCompanyIntegrationByIntegrationString(graphIntegrationsURL, company.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Directory integration not configured"})
		return Company{}, CompanyIntegration{}, "", false
	}

	if !checkIntegrationEnabled(ci) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Directory integration is disabled"})
		return Company{}, CompanyIntegration{}, "", false
	}

	if ci.Status != "connected" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Directory integration is not connected"})
		return Company{}, CompanyIntegration{}, "", false
	}

	accessToken, err := getAccessToken(ci)
	if err != nil {
		ErrorLog.Println("connectedCI getAccessToken err: ", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not authenticate with the directory, please reconnect"})
		return Company{}, CompanyIntegration{}, "", false
	}

	return company, ci, accessToken, true
}

type singleOpRequest struct {
	DryRun bool `json:"dry_run"`
}

func onboardHandler(c *gin.Context) {
	company, ci, accessToken, ok := connectedCI(c)
	if !ok {
		return
	}

	input := struct {
		OnboardParams
		singleOpRequest
	}{}
	if err := c.ShouldBindWith(&input, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is wrong format"})
		return
	}

	result := onboardUser(accessToken, input.OnboardParams, RunOptions{DryRun: input.DryRun})

	if result.Status == LC_SUCCESS_LABEL && !input.DryRun {
		if err := sendNewCredentialsEmail(company, ci, result.UPN, result.TempPassword); err != nil {
			WarnLog.Println("onboardHandler credentials email err: ", err)
		}
	}

	respondWithResult(c, result)
}

func updateHandler(c *gin.Context) {
	_, _, accessToken, ok := connectedCI(c)
	if !ok {
		return
	}

	input := struct {
		UpdateParams
		singleOpRequest
	}{}
	if err := c.ShouldBindWith(&input, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is wrong format"})
		return
	}

	result := updateUser(accessToken, input.UpdateParams, RunOptions{DryRun: input.DryRun})

	respondWithResult(c, result)
}

func offboardHandler(c *gin.Context) {
	_, _, accessToken, ok := connectedCI(c)
	if !ok {
		return
	}

	input := struct {
		OffboardParams
		singleOpRequest
	}{}
	if err := c.ShouldBindWith(&input, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is wrong format"})
		return
	}

	result := offboardUser(accessToken, input.OffboardParams, RunOptions{DryRun: input.DryRun})

	respondWithResult(c, result)
}

func respondWithResult(c *gin.Context, result OpResult) {
	switch result.Status {
	case LC_SUCCESS_LABEL, LC_SKIPPED_LABEL:
		c.JSON(http.StatusOK, result)
	default:
		c.JSON(http.StatusUnprocessableEntity, result)
	}
}

type bulkRunRequest struct {
	Operation string `json:"operation" binding:"required"`
	FilePath  string `json:"file_path"`
	SFTP      bool   `json:"sftp"`
	DryRun    bool   `json:"dry_run"`
}

// bulkHandler runs a whole batch synchronously; rows are processed serially
// so the summary in the response is complete and final.
func bulkHandler(c *gin.Context) {
	company, ci, _, ok := connectedCI(c)
	if !ok {
		return
	}

	input := bulkRunRequest{}
	if err := c.ShouldBindWith(&input, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is wrong format"})
		return
	}

	filePath := input.FilePath
	if input.SFTP {
		fetched, err := fetchBulkFileSFTP(ci)
		if err != nil {
			ErrorLog.Println("bulkHandler fetchBulkFileSFTP err: ", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not fetch input from the SFTP drop"})
			return
		}
		filePath = fetched
	}

	if filePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either file_path or sftp is required"})
		return
	}

	summary, err := runBulkForCompany(company, input.Operation, filePath, RunOptions{DryRun: input.DryRun})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}
