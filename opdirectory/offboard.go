package main

import (
	"fmt"
)

// offboardUser walks a fixed sequence: disable, revoke sessions, strip
// licenses, strip group memberships, and finally (Delete mode only) soft
// delete. Every step short of the delete swallows its own failure as a
// warning; only a failed delete fails the call.
func offboardUser(accessToken string, params OffboardParams, opts RunOptions) OpResult {
	result := OpResult{Status: LC_FAILED_LABEL, UPN: params.identifier()}

	if params.identifier() == "" {
		result.Detail = "either UserPrincipalName or ObjectId is required"
		ErrorLog.Println("offboardUser called with no identifier")
		return result
	}

	action := params.Action
	if action == "" {
		action = OFFBOARD_ACTION_DISABLE
	}
	if action != OFFBOARD_ACTION_DISABLE && action != OFFBOARD_ACTION_DELETE {
		result.Detail = "unknown action " + action + ", expected Disable or Delete"
		ErrorLog.Println("offboardUser unknown action: ", action)
		return result
	}

	revokeSessions := true
	if params.RevokeSessions != nil {
		revokeSessions = *params.RevokeSessions
	}
	removeLicenses := true
	if params.RemoveLicenses != nil {
		removeLicenses = *params.RemoveLicenses
	}
	removeFromGroups := false
	if params.RemoveFromGroups != nil {
		removeFromGroups = *params.RemoveFromGroups
	}

	target, err := graphGetUser(accessToken, params.identifier())
	if err != nil {
		ErrorLog.Println("offboardUser could not resolve target ", params.identifier(), ": ", err)
		result.Detail = err.Error()
		return result
	}

	result.UPN = target.UserPrincipalName

	// sign-in goes off first no matter the action; a delete should never
	// race a live session
	if !target.AccountEnabled {
		InfoLog.Println("offboardUser ", target.UserPrincipalName, " is already disabled")
	} else if opts.confirmMutation("disable account " + target.UserPrincipalName) {
		disabled := false
		err = graphUpdateUser(accessToken, target.ID, GraphUserUpdateRequest{AccountEnabled: &disabled})
		if err != nil {
			WarnLog.Println("offboardUser disable err for ", target.UserPrincipalName, ": ", err)
		} else {
			InfoLog.Println("disabled sign-in for ", target.UserPrincipalName)
		}
	}

	if revokeSessions {
		if opts.confirmMutation("revoke sessions of " + target.UserPrincipalName) {
			err = graphRevokeSessions(accessToken, target.ID)
			if err != nil {
				WarnLog.Println("offboardUser revoke sessions err for ", target.UserPrincipalName, ": ", err)
			}
		}
	}

	if removeLicenses {
		current, err := graphGetAssignedLicenses(accessToken, target.ID)
		if err != nil {
			WarnLog.Println("offboardUser could not read licenses of ", target.UserPrincipalName, ": ", err)
		} else if len(current) == 0 {
			InfoLog.Println("offboardUser ", target.UserPrincipalName, " holds no licenses, nothing to remove")
		} else if opts.confirmMutation(fmt.Sprintf("remove %d license(s) from %s", len(current), target.UserPrincipalName)) {
			err = setAssignedLicenses(accessToken, target.ID, nil, current)
			if err != nil {
				WarnLog.Println("offboardUser license removal err for ", target.UserPrincipalName, ": ", err)
			}
		}
	}

	if removeFromGroups {
		memberships, err := graphGetMemberships(accessToken, target.ID)
		if err != nil {
			WarnLog.Println("offboardUser could not enumerate memberships of ", target.UserPrincipalName, ": ", err)
		} else {
			for _, group := range memberships {
				if !opts.confirmMutation("remove " + target.UserPrincipalName + " from group " + group.DisplayName) {
					continue
				}

				err = graphRemoveGroupMember(accessToken, group.ID, target.ID)
				if err != nil {
					WarnLog.Println("offboardUser remove from group ", group.DisplayName, " err: ", err)
				}
			}
		}
	}

	if action == OFFBOARD_ACTION_DELETE {
		if opts.confirmMutation("soft delete " + target.UserPrincipalName) {
			err = graphDeleteUser(accessToken, target.ID)
			if err != nil {
				ErrorLog.Println("offboardUser delete err for ", target.UserPrincipalName, ": ", err)
				result.Detail = err.Error()
				return result
			}

			InfoLog.Println("soft deleted ", target.UserPrincipalName, ", recoverable for 30 days")
		}
	}

	if opts.DryRun {
		result.Status = LC_SKIPPED_LABEL
		result.Detail = "dry run, no changes applied"
		return result
	}

	result.Status = LC_SUCCESS_LABEL
	result.Detail = action + "d " + target.UserPrincipalName
	return result
}
