package main

import (
	"strings"

	uuid "github.com/satori/go.uuid"
)

type OpStatus string

const (
	LC_SUCCESS_LABEL OpStatus = "Success"
	LC_SKIPPED_LABEL OpStatus = "Skipped"
	LC_WARNING_LABEL OpStatus = "Warning"
	LC_FAILED_LABEL  OpStatus = "Error"
)

// OpResult is what every lifecycle operation returns. User is only set on a
// successful onboard/update; Detail carries the reason for anything else.
type OpResult struct {
	Status OpStatus           `json:"status"`
	UPN    string             `json:"upn"`
	User   *GraphUserResource `json:"user,omitempty"`
	Detail string             `json:"detail,omitempty"`

	// TempPassword is only set by a successful onboard that generated or
	// accepted a credential; it goes out via the credentials email, never in
	// a response body.
	TempPassword string `json:"-"`
}

// RunOptions travels with one operation or one whole bulk run.
type RunOptions struct {
	DryRun bool
}

// confirmMutation gates every mutating directory call. Lookups never go
// through here, so a dry run still resolves targets, managers and groups.
func (o RunOptions) confirmMutation(description string) bool {
	if o.DryRun {
		InfoLog.Println("DRY RUN, skipping: ", description)
		return false
	}

	return true
}

type OnboardParams struct {
	UserPrincipalName string   `json:"user_principal_name" binding:"required"`
	DisplayName       string   `json:"display_name" binding:"required"`
	Password          string   `json:"password"`
	ForceChangePassword *bool  `json:"force_change_password"`
	Department        string   `json:"department"`
	JobTitle          string   `json:"job_title"`
	ManagerUPN        string   `json:"manager_upn"`
	InitialGroups     []string `json:"initial_groups"`
	LicenseSKUs       []string `json:"license_skus"`
}

// UpdateParams uses pointers for every optional attribute: nil means the
// caller did not mention the field, a pointer to "" means clear it. That
// distinction matters most for ManagerUPN.
type UpdateParams struct {
	UserPrincipalName string `json:"user_principal_name"`
	ObjectID          string `json:"object_id"`

	DisplayName    *string `json:"display_name"`
	Department     *string `json:"department"`
	JobTitle       *string `json:"job_title"`
	OfficeLocation *string `json:"office_location"`
	StreetAddress  *string `json:"street_address"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	PostalCode     *string `json:"postal_code"`
	Country        *string `json:"country"`
	MobilePhone    *string `json:"mobile_phone"`
	OfficePhone    *string `json:"office_phone"`
	ManagerUPN     *string `json:"manager_upn"`

	GroupsToAdd      []string `json:"groups_to_add"`
	GroupsToRemove   []string `json:"groups_to_remove"`
	LicensesToAssign []string `json:"licenses_to_assign"`
	LicensesToRemove []string `json:"licenses_to_remove"`
}

func (p UpdateParams) identifier() string {
	if p.UserPrincipalName != "" {
		return p.UserPrincipalName
	}
	return p.ObjectID
}

func (p UpdateParams) hasChanges() bool {
	if p.DisplayName != nil || p.Department != nil || p.JobTitle != nil ||
		p.OfficeLocation != nil || p.StreetAddress != nil || p.City != nil ||
		p.State != nil || p.PostalCode != nil || p.Country != nil ||
		p.MobilePhone != nil || p.OfficePhone != nil || p.ManagerUPN != nil {
		return true
	}

	return len(p.GroupsToAdd) > 0 || len(p.GroupsToRemove) > 0 ||
		len(p.LicensesToAssign) > 0 || len(p.LicensesToRemove) > 0
}

const (
	OFFBOARD_ACTION_DISABLE = "Disable"
	OFFBOARD_ACTION_DELETE  = "Delete"
)

type OffboardParams struct {
	UserPrincipalName string `json:"user_principal_name"`
	ObjectID          string `json:"object_id"`

	Action           string `json:"action"`
	RevokeSessions   *bool  `json:"revoke_sessions"`    // default true
	RemoveLicenses   *bool  `json:"remove_licenses"`    // default true
	RemoveFromGroups *bool  `json:"remove_from_groups"` // default false
}

func (p OffboardParams) identifier() string {
	if p.UserPrincipalName != "" {
		return p.UserPrincipalName
	}
	return p.ObjectID
}

// RowOutcome records what happened to one row of a bulk input, with enough
// context to retry that row on its own.
type RowOutcome struct {
	Row        int      `json:"row"`
	Identifier string   `json:"identifier"`
	Status     OpStatus `json:"status"`
	Detail     string   `json:"detail"`
	Raw        string   `json:"raw"`
}

// RunSummary is owned by the batch processor for the duration of one run and
// is never persisted; it is returned, logged, emailed and archived.
// Skipped rows count inside Failures, so Successes+Failures == Processed.
type RunSummary struct {
	RunID     string       `json:"run_id"`
	Operation string       `json:"operation"`
	DryRun    bool         `json:"dry_run"`
	Total     int          `json:"total"`
	Processed int          `json:"processed"`
	Successes int          `json:"successes"`
	Failures  int          `json:"failures"`
	Skipped   int          `json:"skipped"`
	Failed    []RowOutcome `json:"failed_entries"`
}

func newRunSummary(operation string, dryRun bool) RunSummary {
	return RunSummary{
		RunID:     uuid.NewV4().String(),
		Operation: operation,
		DryRun:    dryRun,
		Failed:    []RowOutcome{},
	}
}

// generateTempPassword builds a throwaway initial credential that clears the
// default complexity policy; the user is forced to rotate it at first login.
func generateTempPassword() string {
	id := uuid.NewV4()
	return "Op!" + strings.Replace(id.String(), "-", "", -1)[:12]
}
