package main

import (
	"fmt"
	"strings"
)

// onboardUser creates the base record and then best-efforts the trimmings:
// manager, initial groups, licenses. Only a create failure fails the whole
// operation; everything after warns and moves on. The caller has already
// established a session (accessToken).
func onboardUser(accessToken string, params OnboardParams, opts RunOptions) OpResult {
	result := OpResult{Status: LC_FAILED_LABEL, UPN: params.UserPrincipalName}

	if params.UserPrincipalName == "" || params.DisplayName == "" {
		result.Detail = "UserPrincipalName and DisplayName are both required to onboard"
		ErrorLog.Println("onboardUser missing required fields for ", params.UserPrincipalName)
		return result
	}

	password := params.Password
	if password == "" {
		password = generateTempPassword()
	}

	forceChange := true
	if params.ForceChangePassword != nil {
		forceChange = *params.ForceChangePassword
	}

	newUser := GraphNewUserRequest{
		AccountEnabled:    true,
		DisplayName:       params.DisplayName,
		MailNickname:      strings.Split(params.UserPrincipalName, "@")[0],
		UserPrincipalName: params.UserPrincipalName,
		Department:        params.Department,
		JobTitle:          params.JobTitle,
		PasswordProfile: &GraphPasswordProfile{
			Password:                      password,
			ForceChangePasswordNextSignIn: forceChange,
		},
	}

	if !opts.confirmMutation("create user " + params.UserPrincipalName) {
		// still resolve the references so a dry run surfaces bad input
		previewOnboardLookups(accessToken, params)

		result.Status = LC_SKIPPED_LABEL
		result.Detail = "dry run, user not created"
		return result
	}

	created, err := graphCreateUser(accessToken, newUser)
	if err != nil {
		// duplicate principal name lands here and is the expected cause
		ErrorLog.Println("onboardUser create err for ", params.UserPrincipalName, ": ", err)
		result.Detail = err.Error()
		return result
	}

	InfoLog.Println("onboarded ", created.UserPrincipalName, " with id ", created.ID)

	if params.ManagerUPN != "" {
		manager, err := graphGetUser(accessToken, params.ManagerUPN)
		if err != nil {
			WarnLog.Println("onboardUser could not resolve manager ", params.ManagerUPN, ", skipping assignment: ", err)
		} else if opts.confirmMutation("assign manager " + params.ManagerUPN + " to " + created.UserPrincipalName) {
			err = graphSetManager(accessToken, created.ID, manager.ID)
			if err != nil {
				WarnLog.Println("onboardUser set manager err: ", err)
			}
		}
	}

	for _, groupRef := range params.InitialGroups {
		group, err := graphFindGroup(accessToken, groupRef)
		if err != nil {
			WarnLog.Println("onboardUser could not resolve group ", groupRef, ": ", err)
			continue
		}

		if !opts.confirmMutation("add " + created.UserPrincipalName + " to group " + group.DisplayName) {
			continue
		}

		err = graphAddGroupMember(accessToken, group.ID, created.ID)
		if err != nil {
			WarnLog.Println("onboardUser add to group ", group.DisplayName, " err: ", err)
		}
	}

	if len(params.LicenseSKUs) > 0 {
		skuIDs := []string{}
		for _, ref := range params.LicenseSKUs {
			skuID, err := resolveLicenseSku(accessToken, ref)
			if err != nil {
				WarnLog.Println("onboardUser could not resolve license ", ref, ": ", err)
				continue
			}
			skuIDs = append(skuIDs, skuID)
		}

		if len(skuIDs) > 0 && opts.confirmMutation(fmt.Sprintf("assign %d license(s) to %s", len(skuIDs), created.UserPrincipalName)) {
			err = setAssignedLicenses(accessToken, created.ID, skuIDs, nil)
			if err != nil {
				WarnLog.Println("onboardUser license assignment err: ", err)
			}
		}
	}

	result.Status = LC_SUCCESS_LABEL
	result.User = created
	result.TempPassword = password
	result.Detail = "created with temporary credential"
	return result
}

func previewOnboardLookups(accessToken string, params OnboardParams) {
	if params.ManagerUPN != "" {
		if _, err := graphGetUser(accessToken, params.ManagerUPN); err != nil {
			WarnLog.Println("dry run: manager ", params.ManagerUPN, " would not resolve: ", err)
		}
	}

	for _, groupRef := range params.InitialGroups {
		if _, err := graphFindGroup(accessToken, groupRef); err != nil {
			WarnLog.Println("dry run: group ", groupRef, " would not resolve: ", err)
		}
	}

	for _, ref := range params.LicenseSKUs {
		if _, err := resolveLicenseSku(accessToken, ref); err != nil {
			WarnLog.Println("dry run: license ", ref, " would not resolve: ", err)
		}
	}
}
