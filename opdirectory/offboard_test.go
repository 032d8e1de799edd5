package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestOffboardUser(t *testing.T) {
	t.Run("default disable revokes sessions and strips licenses", func(t *testing.T) {
		fake := newFakeDirectory(t)
		alice := fake.addUser("alice@contoso.com", "Alice Adams")
		sales := fake.addGroup("Sales Team")
		fake.groupMembers[sales.ID][alice.ID] = true
		skuA := fake.addSku("ENTERPRISEPACK")
		fake.licenses[alice.ID] = []string{skuA}

		result := offboardUser("token", OffboardParams{UserPrincipalName: "alice@contoso.com"}, RunOptions{})

		assert.Equal(t, LC_SUCCESS_LABEL, result.Status)
		assert.Equal(t, "Disabled alice@contoso.com", result.Detail)
		assert.False(t, fake.users[alice.ID].AccountEnabled)
		assert.Empty(t, fake.licenses[alice.ID])
		assert.Contains(t, fake.mutations, "POST /users/"+alice.ID+"/revokeSignInSessions")

		// group membership stays unless explicitly requested
		assert.True(t, fake.groupMembers[sales.ID][alice.ID])
		assert.False(t, fake.deleted[alice.ID])
	})

	t.Run("already disabled account is not patched again", func(t *testing.T) {
		fake := newFakeDirectory(t)
		alice := fake.addUser("alice@contoso.com", "Alice Adams")
		fake.users[alice.ID].AccountEnabled = false

		result := offboardUser("token", OffboardParams{UserPrincipalName: "alice@contoso.com"}, RunOptions{})

		assert.Equal(t, LC_SUCCESS_LABEL, result.Status)
		assert.NotContains(t, fake.mutations, "PATCH /users/"+alice.ID)
		assert.Contains(t, fake.mutations, "POST /users/"+alice.ID+"/revokeSignInSessions")
	})

	t.Run("delete action soft deletes after disabling", func(t *testing.T) {
		fake := newFakeDirectory(t)
		alice := fake.addUser("alice@contoso.com", "Alice Adams")

		result := offboardUser("token", OffboardParams{
			UserPrincipalName: "alice@contoso.com",
			Action:            OFFBOARD_ACTION_DELETE,
		}, RunOptions{})

		assert.Equal(t, LC_SUCCESS_LABEL, result.Status)
		assert.Equal(t, "Deleted alice@contoso.com", result.Detail)
		assert.True(t, fake.deleted[alice.ID])

		_, err := graphGetUser("token", alice.ID)
		assert.NotNil(t, err)
	})

	t.Run("group removal failures do not fail the offboard", func(t *testing.T) {
		fake := newFakeDirectory(t)
		alice := fake.addUser("alice@contoso.com", "Alice Adams")
		sales := fake.addGroup("Sales Team")
		eng := fake.addGroup("Engineering")
		fake.groupMembers[sales.ID][alice.ID] = true
		fake.groupMembers[eng.ID][alice.ID] = true
		fake.failGroupRemove[sales.ID] = true

		result := offboardUser("token", OffboardParams{
			UserPrincipalName: "alice@contoso.com",
			RemoveFromGroups:  boolPtr(true),
		}, RunOptions{})

		assert.Equal(t, LC_SUCCESS_LABEL, result.Status)
		assert.True(t, fake.groupMembers[sales.ID][alice.ID])
		assert.False(t, fake.groupMembers[eng.ID][alice.ID])
	})

	t.Run("toggles can opt out of each step", func(t *testing.T) {
		fake := newFakeDirectory(t)
		alice := fake.addUser("alice@contoso.com", "Alice Adams")
		skuA := fake.addSku("ENTERPRISEPACK")
		fake.licenses[alice.ID] = []string{skuA}

		result := offboardUser("token", OffboardParams{
			UserPrincipalName: "alice@contoso.com",
			RevokeSessions:    boolPtr(false),
			RemoveLicenses:    boolPtr(false),
		}, RunOptions{})

		assert.Equal(t, LC_SUCCESS_LABEL, result.Status)
		assert.False(t, fake.users[alice.ID].AccountEnabled)
		assert.Equal(t, []string{skuA}, fake.licenses[alice.ID])
		assert.NotContains(t, fake.mutations, "POST /users/"+alice.ID+"/revokeSignInSessions")
	})

	t.Run("unknown action fails before any call", func(t *testing.T) {
		fake := newFakeDirectory(t)
		fake.addUser("alice@contoso.com", "Alice Adams")

		result := offboardUser("token", OffboardParams{
			UserPrincipalName: "alice@contoso.com",
			Action:            "Obliterate",
		}, RunOptions{})

		assert.Equal(t, LC_FAILED_LABEL, result.Status)
		assert.Contains(t, result.Detail, "Obliterate")
		assert.Zero(t, fake.mutationCount())
	})

	t.Run("missing target fails", func(t *testing.T) {
		newFakeDirectory(t)

		result := offboardUser("token", OffboardParams{UserPrincipalName: "ghost@contoso.com"}, RunOptions{})

		assert.Equal(t, LC_FAILED_LABEL, result.Status)
		assert.Contains(t, result.Detail, "was not found")
	})

	t.Run("dry run resolves the target but mutates nothing", func(t *testing.T) {
		fake := newFakeDirectory(t)
		alice := fake.addUser("alice@contoso.com", "Alice Adams")
		skuA := fake.addSku("ENTERPRISEPACK")
		fake.licenses[alice.ID] = []string{skuA}

		result := offboardUser("token", OffboardParams{
			UserPrincipalName: "alice@contoso.com",
			Action:            OFFBOARD_ACTION_DELETE,
		}, RunOptions{DryRun: true})

		assert.Equal(t, LC_SKIPPED_LABEL, result.Status)
		assert.Zero(t, fake.mutationCount())
		assert.True(t, fake.users[alice.ID].AccountEnabled)
		assert.False(t, fake.deleted[alice.ID])
	})
}
