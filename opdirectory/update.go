package main

import (
	"fmt"
)

// updateUser applies any subset of attribute, manager, group and license
// changes to an existing record. Field groups are fault-isolated from each
// other; only a failed target resolution or a failed attribute PATCH fails
// the whole call.
func updateUser(accessToken string, params UpdateParams, opts RunOptions) OpResult {
	result := OpResult{Status: LC_FAILED_LABEL, UPN: params.identifier()}

	if params.identifier() == "" {
		result.Detail = "either UserPrincipalName or ObjectId is required"
		ErrorLog.Println("updateUser called with no identifier")
		return result
	}

	if !params.hasChanges() {
		WarnLog.Println("updateUser for ", params.identifier(), " carried no changes, nothing to do")
		result.Status = LC_SKIPPED_LABEL
		result.Detail = "no changes requested"
		return result
	}

	target, err := graphGetUser(accessToken, params.identifier())
	if err != nil {
		ErrorLog.Println("updateUser could not resolve target ", params.identifier(), ": ", err)
		result.Detail = err.Error()
		return result
	}

	result.UPN = target.UserPrincipalName

	attrFailure := ""

	changes, hasAttrChanges := buildAttributePatch(params)
	if hasAttrChanges {
		if opts.confirmMutation("update attributes of " + target.UserPrincipalName) {
			err = graphUpdateUser(accessToken, target.ID, changes)
			if err != nil {
				ErrorLog.Println("updateUser attribute patch err for ", target.UserPrincipalName, ": ", err)
				attrFailure = err.Error()
			}
		}
	}

	if params.ManagerUPN != nil {
		if *params.ManagerUPN == "" {
			// present but empty means clear the relationship
			if opts.confirmMutation("clear manager of " + target.UserPrincipalName) {
				err = graphClearManager(accessToken, target.ID)
				if err != nil {
					WarnLog.Println("updateUser clear manager err: ", err)
				}
			}
		} else {
			manager, err := graphGetUser(accessToken, *params.ManagerUPN)
			if err != nil {
				WarnLog.Println("updateUser could not resolve manager ", *params.ManagerUPN, ", skipping assignment: ", err)
			} else if opts.confirmMutation("assign manager " + *params.ManagerUPN + " to " + target.UserPrincipalName) {
				err = graphSetManager(accessToken, target.ID, manager.ID)
				if err != nil {
					WarnLog.Println("updateUser set manager err: ", err)
				}
			}
		}
	}

	for _, groupRef := range params.GroupsToAdd {
		group, err := graphFindGroup(accessToken, groupRef)
		if err != nil {
			WarnLog.Println("updateUser could not resolve group ", groupRef, ": ", err)
			continue
		}

		if !opts.confirmMutation("add " + target.UserPrincipalName + " to group " + group.DisplayName) {
			continue
		}

		err = graphAddGroupMember(accessToken, group.ID, target.ID)
		if err != nil {
			WarnLog.Println("updateUser add to group ", group.DisplayName, " err: ", err)
		}
	}

	for _, groupRef := range params.GroupsToRemove {
		group, err := graphFindGroup(accessToken, groupRef)
		if err != nil {
			WarnLog.Println("updateUser could not resolve group ", groupRef, ": ", err)
			continue
		}

		if !opts.confirmMutation("remove " + target.UserPrincipalName + " from group " + group.DisplayName) {
			continue
		}

		err = graphRemoveGroupMember(accessToken, group.ID, target.ID)
		if err != nil {
			WarnLog.Println("updateUser remove from group ", group.DisplayName, " err: ", err)
		}
	}

	if len(params.LicensesToAssign) > 0 || len(params.LicensesToRemove) > 0 {
		applyLicenseChanges(accessToken, target, params, opts)
	}

	if opts.DryRun {
		result.Status = LC_SKIPPED_LABEL
		result.Detail = "dry run, no changes applied"
		return result
	}

	if attrFailure != "" {
		result.Detail = attrFailure
		return result
	}

	refreshed, err := graphGetUser(accessToken, target.ID)
	if err != nil {
		// updates landed; a stale copy is still a success
		WarnLog.Println("updateUser could not re-read ", target.UserPrincipalName, ": ", err)
		refreshed = target
	}

	result.Status = LC_SUCCESS_LABEL
	result.User = refreshed
	result.Detail = "updated"
	return result
}

func buildAttributePatch(params UpdateParams) (GraphUserUpdateRequest, bool) {
	changes := GraphUserUpdateRequest{
		DisplayName:    params.DisplayName,
		Department:     params.Department,
		JobTitle:       params.JobTitle,
		OfficeLocation: params.OfficeLocation,
		StreetAddress:  params.StreetAddress,
		City:           params.City,
		State:          params.State,
		PostalCode:     params.PostalCode,
		Country:        params.Country,
		MobilePhone:    params.MobilePhone,
	}

	hasChanges := params.DisplayName != nil || params.Department != nil ||
		params.JobTitle != nil || params.OfficeLocation != nil ||
		params.StreetAddress != nil || params.City != nil || params.State != nil ||
		params.PostalCode != nil || params.Country != nil || params.MobilePhone != nil

	if params.OfficePhone != nil {
		changes.BusinessPhones = []string{*params.OfficePhone}
		hasChanges = true
	}

	return changes, hasChanges
}

// reconcileLicenseSet computes the full set to push: current minus removals,
// plus additions. Stable under repeated application with the same inputs.
func reconcileLicenseSet(current, add, remove []string) []string {
	removed := map[string]bool{}
	for _, skuID := range remove {
		removed[skuID] = true
	}

	final := []string{}
	seen := map[string]bool{}
	for _, skuID := range current {
		if !removed[skuID] && !seen[skuID] {
			final = append(final, skuID)
			seen[skuID] = true
		}
	}
	for _, skuID := range add {
		if !removed[skuID] && !seen[skuID] {
			final = append(final, skuID)
			seen[skuID] = true
		}
	}

	return final
}

func applyLicenseChanges(accessToken string, target *GraphUserResource, params UpdateParams, opts RunOptions) {
	current, err := graphGetAssignedLicenses(accessToken, target.ID)
	if err != nil {
		WarnLog.Println("updateUser could not read current licenses of ", target.UserPrincipalName, ": ", err)
		return
	}

	add := []string{}
	for _, ref := range params.LicensesToAssign {
		skuID, err := resolveLicenseSku(accessToken, ref)
		if err != nil {
			WarnLog.Println("updateUser could not resolve license ", ref, ": ", err)
			continue
		}
		add = append(add, skuID)
	}

	remove := []string{}
	for _, ref := range params.LicensesToRemove {
		skuID, err := resolveLicenseSku(accessToken, ref)
		if err != nil {
			WarnLog.Println("updateUser could not resolve license ", ref, ": ", err)
			continue
		}
		remove = append(remove, skuID)
	}

	final := reconcileLicenseSet(current, add, remove)

	if !opts.confirmMutation(fmt.Sprintf("replace license set of %s with %d license(s)", target.UserPrincipalName, len(final))) {
		return
	}

	err = setAssignedLicenses(accessToken, target.ID, final, current)
	if err != nil {
		WarnLog.Println("updateUser license replace err for ", target.UserPrincipalName, ": ", err)
	}
}
