package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestParseStrictBool(t *testing.T) {
	t.Run("accepts true and false in any case", func(t *testing.T) {
		v, err := parseStrictBool("RevokeSignInSessions", "TRUE")
		assert.Nil(t, err)
		assert.True(t, v)

		v, err = parseStrictBool("RevokeSignInSessions", "false")
		assert.Nil(t, err)
		assert.False(t, v)
	})

	t.Run("rejects everything else and names the column", func(t *testing.T) {
		_, err := parseStrictBool("RemoveAllLicenses", "maybe")
		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), "RemoveAllLicenses")
		assert.Contains(t, err.Error(), `"maybe"`)
	})
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a , b "))
	assert.Equal(t, []string{"a"}, splitList("a,,"))
	assert.Equal(t, []string{}, splitList(""))
}

func TestCanonicalizeHeaders(t *testing.T) {
	t.Run("optional columns match case-insensitively", func(t *testing.T) {
		canonical, present := canonicalizeHeaders(BULK_OP_UPDATE, []string{"UserPrincipalName", "department", "MANAGERUPN"})

		assert.Equal(t, []string{"UserPrincipalName", "Department", "ManagerUPN"}, canonical)
		assert.True(t, present.has("Department"))
		assert.True(t, present.has("ManagerUPN"))
	})

	t.Run("identifier columns must match exactly", func(t *testing.T) {
		canonical, present := canonicalizeHeaders(BULK_OP_UPDATE, []string{"userprincipalname"})

		assert.Equal(t, []string{"userprincipalname"}, canonical)
		assert.False(t, present.has("UserPrincipalName"))
	})

	t.Run("unknown columns pass through", func(t *testing.T) {
		canonical, present := canonicalizeHeaders(BULK_OP_ONBOARD, []string{"UserPrincipalName", "FavoriteColor"})

		assert.Equal(t, []string{"UserPrincipalName", "FavoriteColor"}, canonical)
		assert.False(t, present.has("FavoriteColor"))
	})
}

func TestMapUpdateRowManagerColumn(t *testing.T) {
	t.Run("blank cell under a present column is an explicit clear", func(t *testing.T) {
		headers := headerSet{"UserPrincipalName": true, "ManagerUPN": true}

		params, err := mapUpdateRow(BulkUpdateRow{UserPrincipalName: "alice@contoso.com"}, headers)
		assert.Nil(t, err)
		assert.NotNil(t, params.ManagerUPN)
		assert.Equal(t, "", *params.ManagerUPN)
	})

	t.Run("absent column leaves the manager untouched", func(t *testing.T) {
		headers := headerSet{"UserPrincipalName": true}

		params, err := mapUpdateRow(BulkUpdateRow{UserPrincipalName: "alice@contoso.com"}, headers)
		assert.Nil(t, err)
		assert.Nil(t, params.ManagerUPN)
	})

	t.Run("missing identifier is a mapping error", func(t *testing.T) {
		_, err := mapUpdateRow(BulkUpdateRow{}, headerSet{})
		assert.NotNil(t, err)
	})
}

func TestRunBulkLifecycle(t *testing.T) {
	t.Run("rows are isolated and the summary partitions", func(t *testing.T) {
		fake := newFakeDirectory(t)
		fake.addUser("taken@contoso.com", "Already There")

		path := writeTempCSV(t,
			"UserPrincipalName,DisplayName\n"+
				"new@contoso.com,New Person\n"+
				"nodisplay@contoso.com,\n"+
				"taken@contoso.com,Already There\n")

		summary := runBulkLifecycle("token", BULK_OP_ONBOARD, path, RunOptions{})

		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 3, summary.Processed)
		assert.Equal(t, 1, summary.Successes)
		assert.Equal(t, 2, summary.Failures)
		assert.Equal(t, 0, summary.Skipped)
		assert.Equal(t, summary.Processed, summary.Successes+summary.Failures)

		// the good row landed even though its neighbors failed
		assert.NotEmpty(t, fake.upnToID["new@contoso.com"])

		assert.Len(t, summary.Failed, 2)
		assert.Equal(t, 2, summary.Failed[0].Row)
		assert.Contains(t, summary.Failed[0].Detail, "DisplayName")
		assert.Equal(t, 3, summary.Failed[1].Row)
		assert.Contains(t, summary.Failed[1].Detail, "already exists")
	})

	t.Run("a short record fails its own row, not the batch", func(t *testing.T) {
		fake := newFakeDirectory(t)

		path := writeTempCSV(t,
			"UserPrincipalName,DisplayName\n"+
				"new@contoso.com,New Person\n"+
				"short@contoso.com\n")

		summary := runBulkLifecycle("token", BULK_OP_ONBOARD, path, RunOptions{})

		assert.Equal(t, 2, summary.Processed)
		assert.Equal(t, 1, summary.Successes)
		assert.Equal(t, 1, summary.Failures)
		assert.NotEmpty(t, fake.upnToID["new@contoso.com"])

		assert.Len(t, summary.Failed, 1)
		assert.Equal(t, 2, summary.Failed[0].Row)
		assert.Contains(t, summary.Failed[0].Detail, "DisplayName")
	})

	t.Run("strict bool failures name the offending column", func(t *testing.T) {
		newFakeDirectory(t)

		path := writeTempCSV(t,
			"UserPrincipalName,Action,RevokeSignInSessions\n"+
				"alice@contoso.com,Disable,maybe\n")

		summary := runBulkLifecycle("token", BULK_OP_OFFBOARD, path, RunOptions{})

		assert.Equal(t, 1, summary.Failures)
		assert.Len(t, summary.Failed, 1)
		assert.Contains(t, summary.Failed[0].Detail, "RevokeSignInSessions")
	})

	t.Run("lowercased identifier header fails every row, not the batch", func(t *testing.T) {
		newFakeDirectory(t)

		path := writeTempCSV(t,
			"userprincipalname,DisplayName\n"+
				"new@contoso.com,New Person\n")

		summary := runBulkLifecycle("token", BULK_OP_ONBOARD, path, RunOptions{})

		assert.Equal(t, 1, summary.Processed)
		assert.Equal(t, 1, summary.Failures)
		assert.Contains(t, summary.Failed[0].Detail, "UserPrincipalName")
	})

	t.Run("dry run previews every row without touching the directory", func(t *testing.T) {
		fake := newFakeDirectory(t)

		path := writeTempCSV(t,
			"UserPrincipalName,DisplayName\n"+
				"one@contoso.com,One\n"+
				"two@contoso.com,Two\n")

		summary := runBulkLifecycle("token", BULK_OP_ONBOARD, path, RunOptions{DryRun: true})

		assert.True(t, summary.DryRun)
		assert.Equal(t, 2, summary.Processed)
		assert.Equal(t, 0, summary.Successes)
		assert.Equal(t, 2, summary.Skipped)
		assert.Equal(t, 2, summary.Failures)
		assert.Zero(t, fake.mutationCount())
	})

	t.Run("update rows flow through to the directory", func(t *testing.T) {
		fake := newFakeDirectory(t)
		alice := fake.addUser("alice@contoso.com", "Alice Adams")
		boss := fake.addUser("boss@contoso.com", "Bobbie Boss")
		fake.managers[alice.ID] = boss.ID

		// ManagerUPN present and blank clears, Department updates
		path := writeTempCSV(t,
			"UserPrincipalName,Department,ManagerUPN\n"+
				"alice@contoso.com,Engineering,\n")

		summary := runBulkLifecycle("token", BULK_OP_UPDATE, path, RunOptions{})

		assert.Equal(t, 1, summary.Successes)
		assert.Equal(t, "Engineering", fake.users[alice.ID].Department)
		assert.NotContains(t, fake.managers, alice.ID)
	})

	t.Run("unknown operation aborts before any row", func(t *testing.T) {
		newFakeDirectory(t)

		path := writeTempCSV(t, "UserPrincipalName\nalice@contoso.com\n")

		summary := runBulkLifecycle("token", "terminate", path, RunOptions{})

		assert.Equal(t, 0, summary.Total)
		assert.Equal(t, 0, summary.Processed)
	})

	t.Run("unreadable input aborts before any row", func(t *testing.T) {
		newFakeDirectory(t)

		summary := runBulkLifecycle("token", BULK_OP_ONBOARD, "/no/such/file.csv", RunOptions{})

		assert.Equal(t, 0, summary.Processed)
	})

	t.Run("malformed csv aborts before any row", func(t *testing.T) {
		fake := newFakeDirectory(t)

		path := writeTempCSV(t,
			"UserPrincipalName,DisplayName\n"+
				"\"broken@contoso.com,Broken\n")

		summary := runBulkLifecycle("token", BULK_OP_ONBOARD, path, RunOptions{})

		assert.Equal(t, 0, summary.Processed)
		assert.Zero(t, fake.mutationCount())
	})

	t.Run("header-only input processes nothing", func(t *testing.T) {
		newFakeDirectory(t)

		path := writeTempCSV(t, "UserPrincipalName,DisplayName\n")

		summary := runBulkLifecycle("token", BULK_OP_ONBOARD, path, RunOptions{})

		assert.Equal(t, 0, summary.Total)
		assert.Equal(t, 0, summary.Processed)
	})
}
