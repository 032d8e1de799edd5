package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	uuid "github.com/satori/go.uuid"
)

type Company struct {
	ID        int64  `db:"id, primarykey, autoincrement"`
	ShortName string `db:"short_name" json:"short_name"`
	Name      string `db:"name" json:"name"`
	Token     string `db:"token" json:"-"`
}

func registerCompanyRoutes(router *gin.Engine) {
	router.POST("/api/companies", addCompanyHandler)
}

func addCompanyHandler(c *gin.Context) {
	err := isAdminRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := Company{}
	if err := c.ShouldBindWith(&input, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is wrong format"})
		return
	}

	if input.Name == "" || input.ShortName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing input"})
		return
	}

	existingCompany := &Company{}
	err = dbmap.SelectOne(existingCompany, "SELECT * FROM companies WHERE short_name = ?", input.ShortName)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Company Short already exists"})
		return
	}

	input.Token = generateNewToken()

	err = dbmap.Insert(&input)
	if err != nil {
		ErrorLog.Println("addCompanyHandler Insert err: ", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "An error occured"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"short_name": input.ShortName, "token": input.Token})
}

func generateNewToken() string {
	return uuid.NewV4().String()
}

func lookupCompany(c *gin.Context) (Company, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return Company{}, errors.New("Not authorized")
	}

	thisCompany := Company{}
	err := dbmap.SelectOne(&thisCompany, "SELECT * FROM companies WHERE token = ?", authHeader)
	if err != nil {
		return Company{}, errors.New("Not authorized")
	}

	return thisCompany, nil
}

func lookupCompanyByShortname(shortname string) (Company, error) {
	thisCompany := Company{}
	err := dbmap.SelectOne(&thisCompany, "SELECT * FROM companies WHERE short_name = ?", shortname)
	return thisCompany, err
}

func isAdminRequest(c *gin.Context) error {
	adminHeader := c.GetHeader("X-Admin-Key")
	if adminHeader == "" || adminHeader != passwords.ADMIN_KEY {
		return errors.New("Not authorized")
	}

	return nil
}
