package main

type GraphPasswordProfile struct {
	ForceChangePasswordNextSignIn bool   `json:"forceChangePasswordNextSignIn"`
	Password                      string `json:"password"`
}

type GraphErrorResponseBody struct {
	Error GraphErrorResponse `json:"error"`
}

type GraphErrorResponse struct {
	Code       string                   `json:"code"`
	Message    string                   `json:"message"`
	InnerError GraphInnerError          `json:"innerError"`
	Details    []map[string]interface{} `json:"details"`
}

type GraphInnerError struct {
	RequestID string `json:"request-id"`
	Date      string `json:"date"`
}

type GraphNewUserRequest struct {
	AccountEnabled    bool                 `json:"accountEnabled"`
	DisplayName       string               `json:"displayName,omitempty"`
	MailNickname      string               `json:"mailNickname,omitempty"`
	UserPrincipalName string               `json:"userPrincipalName,omitempty"`
	PasswordProfile   *GraphPasswordProfile `json:"passwordProfile,omitempty"`
	Department        string               `json:"department,omitempty"`
	JobTitle          string               `json:"jobTitle,omitempty"`
}

// GraphUserUpdateRequest is a PATCH body: nil means leave the attribute
// alone, a pointer to "" clears it where the directory allows that.
type GraphUserUpdateRequest struct {
	AccountEnabled *bool   `json:"accountEnabled,omitempty"`
	DisplayName    *string `json:"displayName,omitempty"`
	Department     *string `json:"department,omitempty"`
	JobTitle       *string `json:"jobTitle,omitempty"`
	OfficeLocation *string `json:"officeLocation,omitempty"`
	StreetAddress  *string `json:"streetAddress,omitempty"`
	City           *string `json:"city,omitempty"`
	State          *string `json:"state,omitempty"`
	PostalCode     *string `json:"postalCode,omitempty"`
	Country        *string `json:"country,omitempty"`
	MobilePhone    *string `json:"mobilePhone,omitempty"`
	BusinessPhones []string `json:"businessPhones,omitempty"`
}

type GraphAssignedLicense struct {
	SkuID string `json:"skuId"`
}

type GraphUserResource struct {
	ID                string                 `json:"id"`
	AccountEnabled    bool                   `json:"accountEnabled"`
	DisplayName       string                 `json:"displayName"`
	Department        string                 `json:"department"`
	JobTitle          string                 `json:"jobTitle"`
	Mail              string                 `json:"mail"`
	MailNickname      string                 `json:"mailNickname"`
	MobilePhone       string                 `json:"mobilePhone"`
	BusinessPhones    []string               `json:"businessPhones"`
	OfficeLocation    string                 `json:"officeLocation"`
	StreetAddress     string                 `json:"streetAddress"`
	City              string                 `json:"city"`
	State             string                 `json:"state"`
	PostalCode        string                 `json:"postalCode"`
	Country           string                 `json:"country"`
	UserPrincipalName string                 `json:"userPrincipalName"`
	AssignedLicenses  []GraphAssignedLicense `json:"assignedLicenses"`
}

type GraphGroup struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type GraphGroupsResponse struct {
	Value []GraphGroup `json:"value"`
}

type GraphLicenseDetail struct {
	ID            string `json:"id"`
	SkuID         string `json:"skuId"`
	SkuPartNumber string `json:"skuPartNumber"`
}

type GraphLicenseDetailsResponse struct {
	Value []GraphLicenseDetail `json:"value"`
}

type GraphLicenseToAdd struct {
	SkuID string `json:"skuId"`
}

type GraphAssignLicenseRequest struct {
	AddLicenses    []GraphLicenseToAdd `json:"addLicenses"`
	RemoveLicenses []string            `json:"removeLicenses"`
}

// GraphRefRequest points a relationship ($ref) at another directory object.
type GraphRefRequest struct {
	OdataID string `json:"@odata.id"`
}

type GraphSku struct {
	SkuID         string `json:"skuId"`
	SkuPartNumber string `json:"skuPartNumber"`
	AppliesTo     string `json:"appliesTo"`
}

type GraphSkusResponse struct {
	Value []GraphSku `json:"value"`
}
