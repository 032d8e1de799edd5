package main

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type GraphAccessResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

const graphIntegrationsURL = "microsoftgraph"

const (
	graphClientID    = "8c2f9d31-64b1-4d0e-a2f7-9e3b06c41d58"
	graphScope       = "User.ReadWrite.All Directory.ReadWrite.All offline_access"
	graphGrantType   = "authorization_code"
	graphRedirectURI = "https://connect.onehcm.com/callbacks/microsoftgraph"
	graphLoginHost   = "https://login.microsoftonline.com"
)

func registerGraphAuthRoutes(router *gin.Engine) {
	router.POST("/api/callbacks/microsoftgraph", graphCallbackHandler)
}

type graphCallbackRequest struct {
	Code string `json:"code" binding:"required"`
}

// graphCallbackHandler finishes the OAuth connection for the requesting
// company: exchanges the auth code, stores the token row, marks the
// integration connected.
func graphCallbackHandler(c *gin.Context) {
	company, err := lookupCompany(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not authorized"})
		return
	}

	input := graphCallbackRequest{}
	if err := c.ShouldBindWith(&input, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is wrong format"})
		return
	}

	ci, err := createCompanyIntegrationIfNotExists(graphIntegrationsURL, company.ID)
	if err != nil {
		ErrorLog.Println("graphCallbackHandler createCompanyIntegrationIfNotExists err: ", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "An error occured"})
		return
	}

	newTokens, err := graphAccessRequest(input.Code, ci.ID)
	if err != nil {
		ErrorLog.Println("graphCallbackHandler graphAccessRequest err: ", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not connect to Microsoft"})
		return
	}

	err = newTokens.insert()
	if err != nil {
		ErrorLog.Println("graphCallbackHandler token insert err: ", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "An error occured"})
		return
	}

	me, err := graphGetMe(newTokens.AccessToken)
	if err == nil {
		ci.AuthedUsername = me.UserPrincipalName
	}

	ci.Status = "connected"
	_, err = dbmap.Update(ci)
	if err != nil {
		ErrorLog.Println("graphCallbackHandler ci Update err: ", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": ci.Status, "authed_username": ci.AuthedUsername})
}

func graphAccessRequest(authCode string, companyIntegrationID int64) (OAuthTokens, error) {
	data := url.Values{}
	data.Add("client_id", graphClientID)
	data.Add("scope", graphScope)
	data.Add("code", authCode)
	data.Add("redirect_uri", graphRedirectURI)
	data.Add("grant_type", graphGrantType)
	data.Add("client_secret", passwords.GRAPH_API_SECRET)

	u, _ := url.ParseRequestURI(graphLoginHost)
	u.Path = "/common/oauth2/v2.0/token"
	urlStr := u.String()

	req, err := http.NewRequest("POST", urlStr, strings.NewReader(data.Encode()))
	if err != nil {
		ErrorLog.Println("graph access err: ", err)
		return OAuthTokens{}, errors.New("Something went wrong")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		ErrorLog.Println("graph access err: ", err)
		return OAuthTokens{}, errors.New("Something is wrong on our end")
	}
	defer resp.Body.Close()

	if resp.StatusCode > 201 {
		bodyBytes, _ := ioutil.ReadAll(resp.Body)
		bodyString := string(bodyBytes)

		ErrorLog.Println(bodyString)
		ErrorLog.Println("graph access err with code: ", resp.StatusCode)
		return OAuthTokens{}, errors.New("BAD REQUEST: " + strconv.Itoa(resp.StatusCode))
	}

	graphResponse := GraphAccessResponse{}
	err = json.NewDecoder(resp.Body).Decode(&graphResponse)
	if err != nil {
		ErrorLog.Println("graph access NewDecoder err: ", err)
		return OAuthTokens{}, err
	}

	activeV := true
	newOauthTokens := OAuthTokens{
		AccessToken:          graphResponse.AccessToken,
		RefreshToken:         graphResponse.RefreshToken,
		Expires:              time.Now().Unix() + int64(graphResponse.ExpiresIn),
		CompanyIntegrationID: companyIntegrationID,
		Active:               &activeV,
	}

	return newOauthTokens, nil
}

func graphRefreshToken(authTokens OAuthTokens) (string, error) {
	if authTokens.RefreshToken == "" {
		refreshError("expired", authTokens)

		return "", errors.New("No refresh token to use, must reauthorize")
	}

	data := url.Values{}
	data.Add("client_id", graphClientID)
	data.Add("scope", graphScope)
	data.Add("refresh_token", authTokens.RefreshToken)
	data.Add("redirect_uri", graphRedirectURI)
	data.Add("grant_type", "refresh_token")
	data.Add("client_secret", passwords.GRAPH_API_SECRET)

	u, _ := url.ParseRequestURI(graphLoginHost)
	u.Path = "/common/oauth2/v2.0/token"
	urlStr := u.String()

	req, err := http.NewRequest("POST", urlStr, strings.NewReader(data.Encode()))
	if err != nil {
		ErrorLog.Println("graph refresh err: ", err)
		return "", errors.New("Something went wrong")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		ErrorLog.Println("graph refresh err: ", err)
		return "", errors.New("Something is wrong on our end")
	}
	defer resp.Body.Close()

	if resp.StatusCode > 201 {
		bodyBytes, _ := ioutil.ReadAll(resp.Body)
		bodyString := string(bodyBytes)

		refreshError("expired", authTokens)

		ErrorLog.Println("graph refresh err: ", bodyString, " with code: ", resp.StatusCode)
		return "", errors.New("BAD REQUEST: " + strconv.Itoa(resp.StatusCode))
	}

	graphResponse := GraphAccessResponse{}
	err = json.NewDecoder(resp.Body).Decode(&graphResponse)
	if err != nil {
		refreshError("expired", authTokens)

		ErrorLog.Println("graph refresh NewDecoder err: ", err)
		return "", err
	}

	if graphResponse.AccessToken == "" {
		refreshError("expired", authTokens)

		ErrorLog.Printf("graph refresh did not send access token, response: %+v\n", graphResponse)
		return "", errors.New("Could not refresh token")
	}

	authTokens.AccessToken = graphResponse.AccessToken
	authTokens.Expires = time.Now().Unix() + int64(graphResponse.ExpiresIn)
	_, err = dbmap.Update(&authTokens)
	if err != nil {
		ErrorLog.Println("could not update authToken err: ", err)
	}

	return graphResponse.AccessToken, nil
}
