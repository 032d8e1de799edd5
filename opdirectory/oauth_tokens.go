package main

import (
	"errors"
	"fmt"
	"time"
)

type OAuthTokens struct {
	ID                   int64  `db:"id, primarykey, autoincrement"`
	CompanyIntegrationID int64  `db:"company_integration_id"`
	AccessToken          string `db:"access_token"`
	RefreshToken         string `db:"refresh_token"`
	Expires              int64  `db:"expires"`
	Active               *bool  `db:"active"`
}

func (t *OAuthTokens) insert() error {
	return dbmap.Insert(t)
}

func deactivateOAuthByCompanyIntegrationID(ciID int64) error {
	thisToken := &OAuthTokens{}
	err := dbmap.SelectOne(thisToken, "SELECT * FROM oauth_tokens WHERE company_integration_id = ? AND active = 1", ciID)
	if err != nil {
		ErrorLog.Println("deactivateOAuthByCompanyIntegrationID SelectOne: ", err)
		return errors.New("Could not find auth token to deactivate")
	}

	*thisToken.Active = false

	_, err = dbmap.Update(thisToken)
	if err != nil {
		ErrorLog.Println("deactivateOAuthByCompanyIntegrationID Update: ", err)
		return errors.New("Could not update")
	}

	return nil
}

func refreshError(newConnectionStatus string, authTokens OAuthTokens) {
	thisCompanyIntegration := CompanyIntegration{}
	err := dbmap.SelectOne(&thisCompanyIntegration, "SELECT * FROM company_integrations WHERE id = ?", authTokens.CompanyIntegrationID)
	if err != nil {
		ErrorLog.Println("refreshError could not lookup company integration: ", err)
		return
	}

	thisCompanyIntegration.Status = newConnectionStatus
	dbmap.Update(&thisCompanyIntegration)

	authTokens.Expires = 0
	dbmap.Update(&authTokens)

	err = deactivateOAuthByCompanyIntegrationID(thisCompanyIntegration.ID)
	if err != nil {
		ErrorLog.Println("refreshError could not deactivate auth token: ", err)
		return
	}
}

// getAccessToken is the authenticated-session check: a company integration
// with no usable (or refreshable) token row has no session.
func getAccessToken(companyIntegration CompanyIntegration) (string, error) {
	thisAccessToken := OAuthTokens{}
	err := dbmap.SelectOne(&thisAccessToken, "SELECT * FROM oauth_tokens WHERE company_integration_id = ? AND active = 1", companyIntegration.ID)
	if err != nil {
		return "", errors.New(fmt.Sprintf("could not lookup an oauth token for company integration %d", companyIntegration.ID))
	}

	nowUnixSeconds := time.Now().Unix()

	if thisAccessToken.Expires > nowUnixSeconds {
		return thisAccessToken.AccessToken, nil
	}

	newAccessToken, err := graphRefreshToken(thisAccessToken)
	if err != nil {
		ErrorLog.Printf("REFRESH ERROR!: ci: %v, err: %v\n", companyIntegration.ID, err)
		return "", err
	}

	return newAccessToken, nil
}
