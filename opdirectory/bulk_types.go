package main

type BulkOnboardRow struct {
	UserPrincipalName            string `csv:"UserPrincipalName"`
	DisplayName                  string `csv:"DisplayName"`
	Password                     string `csv:"Password"`
	ForceChangePasswordNextLogin string `csv:"ForceChangePasswordNextLogin"`
	InitialGroups                string `csv:"InitialGroups"`
	LicenseSKUs                  string `csv:"LicenseSKUs"`
	Department                   string `csv:"Department"`
	JobTitle                     string `csv:"JobTitle"`
	ManagerUPN                   string `csv:"ManagerUPN"`
}

type BulkUpdateRow struct {
	UserPrincipalName string `csv:"UserPrincipalName"`
	ObjectID          string `csv:"ObjectId"`
	DisplayName       string `csv:"DisplayName"`
	Department        string `csv:"Department"`
	JobTitle          string `csv:"JobTitle"`
	OfficeLocation    string `csv:"OfficeLocation"`
	StreetAddress     string `csv:"StreetAddress"`
	City              string `csv:"City"`
	State             string `csv:"State"`
	PostalCode        string `csv:"PostalCode"`
	Country           string `csv:"Country"`
	MobilePhone       string `csv:"MobilePhone"`
	OfficePhone       string `csv:"OfficePhone"`
	ManagerUPN        string `csv:"ManagerUPN"`
	GroupsToAdd       string `csv:"GroupsToAdd"`
	GroupsToRemove    string `csv:"GroupsToRemove"`
	LicensesToAssign  string `csv:"LicensesToAssign"`
	LicensesToRemove  string `csv:"LicensesToRemove"`
}

type BulkOffboardRow struct {
	UserPrincipalName    string `csv:"UserPrincipalName"`
	ObjectID             string `csv:"ObjectId"`
	Action               string `csv:"Action"`
	RevokeSignInSessions string `csv:"RevokeSignInSessions"`
	RemoveAllLicenses    string `csv:"RemoveAllLicenses"`
	RemoveFromAllGroups  string `csv:"RemoveFromAllGroups"`
}

var onboardOptionalColumns = []string{
	"DisplayName", "Password", "ForceChangePasswordNextLogin", "InitialGroups",
	"LicenseSKUs", "Department", "JobTitle", "ManagerUPN",
}

var updateOptionalColumns = []string{
	"DisplayName", "Department", "JobTitle", "OfficeLocation", "StreetAddress",
	"City", "State", "PostalCode", "Country", "MobilePhone", "OfficePhone",
	"ManagerUPN", "GroupsToAdd", "GroupsToRemove", "LicensesToAssign",
	"LicensesToRemove",
}

var offboardOptionalColumns = []string{
	"Action", "RevokeSignInSessions", "RemoveAllLicenses", "RemoveFromAllGroups",
}
