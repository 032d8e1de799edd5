package main

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// PropertyMap is a JSON object stored in a TEXT column.
type PropertyMap map[string]interface{}

func (p PropertyMap) Value() (driver.Value, error) {
	j, err := json.Marshal(p)
	return j, err
}

func (p *PropertyMap) Scan(src interface{}) error {
	source, ok := src.([]byte)
	if !ok {
		return errors.New("type assertion .([]byte) failed")
	}

	var i interface{}
	if err := json.Unmarshal(source, &i); err != nil {
		return err
	}

	m, ok := i.(map[string]interface{})
	if !ok {
		return errors.New("type assertion .(map[string]interface{}) failed")
	}

	*p = m

	return nil
}

type CompanyIntegration struct {
	ID             int64       `db:"id, primarykey, autoincrement" json:"id"`
	CompanyID      int64       `db:"company_id" json:"company_id"`
	IntegrationURL string      `db:"integration_url" json:"integration_url"`
	Status         string      `db:"status" json:"status"`
	AuthedUsername string      `db:"authed_username" json:"authed_username"`
	Created        int64       `db:"created" json:"created"`
	Settings       PropertyMap `db:"settings,size:1024" json:"settings"`
}

func registerCompanyIntegrationRoutes(router *gin.Engine) {
	router.GET("/api/companyintegration/:integrationURL", getCompanyIntegrationHandler)
	router.POST("/api/companyintegration/:integrationURL/settings/update", updateSettingsHandler)
}

func getCompanyIntegrationHandler(c *gin.Context) {
	company, err := lookupCompany(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not authorized"})
		return
	}

	integrationURL := c.Param("integrationURL")

	ci, err := getCompanyIntegrationByIntegrationString(integrationURL, company.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Integration not found"})
		return
	}

	c.JSON(http.StatusOK, ci)
}

func updateSettingsHandler(c *gin.Context) {
	company, err := lookupCompany(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not authorized"})
		return
	}

	integrationURL := c.Param("integrationURL")

	ci, err := getCompanyIntegrationByIntegrationString(integrationURL, company.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Integration not found"})
		return
	}

	input := PropertyMap{}
	if err := c.ShouldBindWith(&input, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is wrong format"})
		return
	}

	for name, value := range input {
		ci.Settings[name] = value
	}

	_, err = dbmap.Update(&ci)
	if err != nil {
		ErrorLog.Println("updateSettingsHandler Update err: ", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "An error occured"})
		return
	}

	c.JSON(http.StatusOK, ci)
}

func createCompanyIntegrationIfNotExists(integrationURL string, companyID int64) (*CompanyIntegration, error) {
	existing := &CompanyIntegration{}
	err := dbmap.SelectOne(existing, "SELECT * FROM company_integrations WHERE company_id = ? AND integration_url = ?", companyID, integrationURL)
	if err == nil {
		return existing, nil
	}

	newCI := &CompanyIntegration{
		CompanyID:      companyID,
		IntegrationURL: integrationURL,
		Status:         "pending",
		Created:        time.Now().Unix(),
		Settings:       PropertyMap{"enabled": true},
	}

	err = dbmap.Insert(newCI)
	if err != nil {
		return nil, err
	}

	return newCI, nil
}

func getCompanyIntegrationByIntegrationString(integration string, companyID int64) (CompanyIntegration, error) {
	thisCI := CompanyIntegration{}
	err := dbmap.SelectOne(&thisCI, "SELECT * FROM company_integrations WHERE company_id = ? AND integration_url = ?", companyID, integration)
	return thisCI, err
}

func checkIntegrationEnabled(ci CompanyIntegration) bool {
	enabled, ok := ci.Settings["enabled"]
	if !ok {
		return false
	}

	enabledBool, ok := enabled.(bool)
	if !ok {
		return false
	}

	return enabledBool
}

func getCIStringSetting(ci CompanyIntegration, name string) string {
	raw, ok := ci.Settings[name]
	if !ok {
		return ""
	}

	str, ok := raw.(string)
	if !ok {
		return ""
	}

	return str
}
