package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	uuid "github.com/satori/go.uuid"
)

// graphBaseURL is a var so tests can point the client at a local server.
var graphBaseURL = "https://graph.microsoft.com/v1.0"

func graphRequest(method, path, accessToken string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b := new(bytes.Buffer)
		json.NewEncoder(b).Encode(payload)
		body = b
	}

	req, err := http.NewRequest(method, graphBaseURL+path, body)
	if err != nil {
		ErrorLog.Println("graphRequest NewRequest err: ", err)
		return nil, errors.New("Something went wrong on our end, we will investigate the issue.")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		ErrorLog.Println("graphRequest Do err: ", err)
		return nil, errors.New("Something went wrong on our end, we will investigate the issue.")
	}

	return resp, nil
}

// graphError drains an error response into a message we can surface. The
// caller still owns resp.Body.
func graphError(resp *http.Response) error {
	graphResponse := GraphErrorResponseBody{}
	err := json.NewDecoder(resp.Body).Decode(&graphResponse)
	if err != nil {
		ErrorLog.Println("graphError NewDecoder err: ", err)
		return errors.New("Request failed with status " + strconv.Itoa(resp.StatusCode))
	}

	if graphResponse.Error.Code == "Authorization_RequestDenied" {
		return errors.New("The Microsoft user that is currently used to connect this integration no longer has the access privileges required to perform this action. Please reconnect with another admin.")
	}

	msg := graphResponse.Error.Message
	if msg == "" {
		msg = graphResponse.Error.Code
	}

	ErrorLog.Println("graph ERROR response msg: ", graphResponse.Error.Message, " CODE: ", graphResponse.Error.Code)
	return errors.New(msg)
}

func graphGetMe(accessToken string) (*GraphUserResource, error) {
	resp, err := graphRequest("GET", "/me", accessToken, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return nil, graphError(resp)
	}

	me := GraphUserResource{}
	err = json.NewDecoder(resp.Body).Decode(&me)
	if err != nil {
		ErrorLog.Println("graphGetMe NewDecoder err: ", err)
		return nil, errors.New("bad request")
	}

	return &me, nil
}

func graphCreateUser(accessToken string, newUser GraphNewUserRequest) (*GraphUserResource, error) {
	resp, err := graphRequest("POST", "/users", accessToken, newUser)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return nil, graphError(resp)
	}

	created := GraphUserResource{}
	err = json.NewDecoder(resp.Body).Decode(&created)
	if err != nil {
		ErrorLog.Println("graphCreateUser NewDecoder err: ", err)
		return nil, errors.New("Creation succeeded but the response could not be read")
	}

	return &created, nil
}

const userSelectFields = "id,accountEnabled,displayName,department,jobTitle,mail,mailNickname,mobilePhone,businessPhones,officeLocation,streetAddress,city,state,postalCode,country,userPrincipalName,assignedLicenses"

// graphGetUser accepts either a user principal name or an object id, which
// is how the users collection is addressed.
func graphGetUser(accessToken, upnOrID string) (*GraphUserResource, error) {
	path := "/users/" + url.PathEscape(upnOrID) + "?$select=" + userSelectFields

	resp, err := graphRequest("GET", path, accessToken, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.New("User " + upnOrID + " was not found in the directory.")
	}
	if resp.StatusCode > 299 {
		return nil, graphError(resp)
	}

	user := GraphUserResource{}
	err = json.NewDecoder(resp.Body).Decode(&user)
	if err != nil {
		ErrorLog.Println("graphGetUser NewDecoder err: ", err)
		return nil, errors.New("bad request")
	}

	return &user, nil
}

func graphUpdateUser(accessToken, userID string, changes GraphUserUpdateRequest) error {
	resp, err := graphRequest("PATCH", "/users/"+url.PathEscape(userID), accessToken, changes)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return graphError(resp)
	}

	return nil
}

func graphSetManager(accessToken, userID, managerID string) error {
	ref := GraphRefRequest{OdataID: graphBaseURL + "/users/" + managerID}

	resp, err := graphRequest("PUT", "/users/"+url.PathEscape(userID)+"/manager/$ref", accessToken, ref)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return graphError(resp)
	}

	return nil
}

func graphClearManager(accessToken, userID string) error {
	resp, err := graphRequest("DELETE", "/users/"+url.PathEscape(userID)+"/manager/$ref", accessToken, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return graphError(resp)
	}

	return nil
}

func looksLikeObjectID(s string) bool {
	_, err := uuid.FromString(s)
	return err == nil
}

// graphFindGroup resolves a group by object id or exact display name.
// Results are cached; bulk runs tend to hit the same handful of groups.
func graphFindGroup(accessToken, nameOrID string) (*GraphGroup, error) {
	cacheKey := CACHENAME_GROUP_LOOKUP + nameOrID
	cachedInterface, found := cash.Get(cacheKey)
	if found {
		cachedGroup, isType := cachedInterface.(*GraphGroup)
		if isType {
			return cachedGroup, nil
		}
	}

	if looksLikeObjectID(nameOrID) {
		resp, err := graphRequest("GET", "/groups/"+url.PathEscape(nameOrID), accessToken, nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode > 299 {
			return nil, graphError(resp)
		}

		group := GraphGroup{}
		err = json.NewDecoder(resp.Body).Decode(&group)
		if err != nil {
			ErrorLog.Println("graphFindGroup NewDecoder err: ", err)
			return nil, errors.New("bad request")
		}

		cash.Set(cacheKey, &group, DEFAULT_CACHE_EXPIRATION)
		return &group, nil
	}

	filter := url.QueryEscape(fmt.Sprintf("displayName eq '%s'", strings.Replace(nameOrID, "'", "''", -1)))
	resp, err := graphRequest("GET", "/groups?$filter="+filter, accessToken, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return nil, graphError(resp)
	}

	groups := GraphGroupsResponse{}
	err = json.NewDecoder(resp.Body).Decode(&groups)
	if err != nil {
		ErrorLog.Println("graphFindGroup NewDecoder err: ", err)
		return nil, errors.New("bad request")
	}

	for i := range groups.Value {
		if groups.Value[i].DisplayName == nameOrID {
			cash.Set(cacheKey, &groups.Value[i], DEFAULT_CACHE_EXPIRATION)
			return &groups.Value[i], nil
		}
	}

	return nil, errors.New("Group " + nameOrID + " was not found in the directory.")
}

func graphAddGroupMember(accessToken, groupID, userID string) error {
	ref := GraphRefRequest{OdataID: graphBaseURL + "/directoryObjects/" + userID}

	resp, err := graphRequest("POST", "/groups/"+url.PathEscape(groupID)+"/members/$ref", accessToken, ref)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return graphError(resp)
	}

	return nil
}

func graphRemoveGroupMember(accessToken, groupID, userID string) error {
	path := "/groups/" + url.PathEscape(groupID) + "/members/" + url.PathEscape(userID) + "/$ref"

	resp, err := graphRequest("DELETE", path, accessToken, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return graphError(resp)
	}

	return nil
}

func graphGetMemberships(accessToken, userID string) ([]GraphGroup, error) {
	resp, err := graphRequest("GET", "/users/"+url.PathEscape(userID)+"/memberOf", accessToken, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return nil, graphError(resp)
	}

	groups := GraphGroupsResponse{}
	err = json.NewDecoder(resp.Body).Decode(&groups)
	if err != nil {
		ErrorLog.Println("graphGetMemberships NewDecoder err: ", err)
		return nil, errors.New("bad request")
	}

	return groups.Value, nil
}

func graphGetAssignedLicenses(accessToken, userID string) ([]string, error) {
	resp, err := graphRequest("GET", "/users/"+url.PathEscape(userID)+"/licenseDetails", accessToken, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return nil, graphError(resp)
	}

	details := GraphLicenseDetailsResponse{}
	err = json.NewDecoder(resp.Body).Decode(&details)
	if err != nil {
		ErrorLog.Println("graphGetAssignedLicenses NewDecoder err: ", err)
		return nil, errors.New("bad request")
	}

	skuIDs := []string{}
	for _, d := range details.Value {
		skuIDs = append(skuIDs, d.SkuID)
	}

	return skuIDs, nil
}

// setAssignedLicenses replaces the user's assigned license set in a single
// call: the full desired set goes in addLicenses (re-adds are no-ops on the
// directory side) and anything currently held but not desired is removed.
func setAssignedLicenses(accessToken, userID string, desired, current []string) error {
	request := GraphAssignLicenseRequest{
		AddLicenses:    []GraphLicenseToAdd{},
		RemoveLicenses: []string{},
	}

	for _, skuID := range desired {
		request.AddLicenses = append(request.AddLicenses, GraphLicenseToAdd{SkuID: skuID})
	}

	desiredSet := map[string]bool{}
	for _, skuID := range desired {
		desiredSet[skuID] = true
	}
	for _, skuID := range current {
		if !desiredSet[skuID] {
			request.RemoveLicenses = append(request.RemoveLicenses, skuID)
		}
	}

	resp, err := graphRequest("POST", "/users/"+url.PathEscape(userID)+"/assignLicense", accessToken, request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return graphError(resp)
	}

	return nil
}

func graphRevokeSessions(accessToken, userID string) error {
	resp, err := graphRequest("POST", "/users/"+url.PathEscape(userID)+"/revokeSignInSessions", accessToken, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return graphError(resp)
	}

	return nil
}

// graphDeleteUser is a soft delete: the directory keeps the object
// restorable for 30 days before it is gone for good.
func graphDeleteUser(accessToken, userID string) error {
	resp, err := graphRequest("DELETE", "/users/"+url.PathEscape(userID), accessToken, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errors.New("User " + userID + " was not found in the directory.")
	}
	if resp.StatusCode > 299 {
		return graphError(resp)
	}

	return nil
}

func graphListSkus(accessToken string) ([]GraphSku, error) {
	cachedInterface, found := cash.Get(CACHENAME_SKU_CATALOG)
	if found {
		cachedSkus, isType := cachedInterface.([]GraphSku)
		if isType {
			return cachedSkus, nil
		}
	}

	resp, err := graphRequest("GET", "/subscribedSkus", accessToken, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		return nil, graphError(resp)
	}

	skus := GraphSkusResponse{}
	err = json.NewDecoder(resp.Body).Decode(&skus)
	if err != nil {
		ErrorLog.Println("graphListSkus NewDecoder err: ", err)
		return nil, errors.New("bad request")
	}

	cash.Set(CACHENAME_SKU_CATALOG, skus.Value, DEFAULT_CACHE_EXPIRATION)

	return skus.Value, nil
}

// resolveLicenseSku accepts a skuId GUID directly, or a SKU part number
// (e.g. ENTERPRISEPACK) which is looked up in the tenant's subscribed SKUs.
func resolveLicenseSku(accessToken, nameOrGUID string) (string, error) {
	if looksLikeObjectID(nameOrGUID) {
		return nameOrGUID, nil
	}

	skus, err := graphListSkus(accessToken)
	if err != nil {
		return "", err
	}

	for _, sku := range skus {
		if strings.EqualFold(sku.SkuPartNumber, nameOrGUID) {
			return sku.SkuID, nil
		}
	}

	return "", errors.New("License SKU " + nameOrGUID + " is not subscribed on this tenant.")
}
