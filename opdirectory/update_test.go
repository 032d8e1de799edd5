package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestUpdateUser(t *testing.T) {
	t.Run("no changes requested is a skip", func(t *testing.T) {
		fake := newFakeDirectory(t)
		fake.addUser("alice@contoso.com", "Alice Adams")

		result := updateUser("token", UpdateParams{UserPrincipalName: "alice@contoso.com"}, RunOptions{})

		assert.Equal(t, LC_SKIPPED_LABEL, result.Status)
		assert.Equal(t, "no changes requested", result.Detail)
		assert.Zero(t, fake.mutationCount())
	})

	t.Run("missing identifier fails", func(t *testing.T) {
		newFakeDirectory(t)

		result := updateUser("token", UpdateParams{DisplayName: strPtr("New Name")}, RunOptions{})

		assert.Equal(t, LC_FAILED_LABEL, result.Status)
	})

	t.Run("unknown target fails", func(t *testing.T) {
		newFakeDirectory(t)

		result := updateUser("token", UpdateParams{
			UserPrincipalName: "ghost@contoso.com",
			DisplayName:       strPtr("New Name"),
		}, RunOptions{})

		assert.Equal(t, LC_FAILED_LABEL, result.Status)
		assert.Contains(t, result.Detail, "was not found")
	})

	t.Run("attribute changes land and the fresh record comes back", func(t *testing.T) {
		fake := newFakeDirectory(t)
		alice := fake.addUser("alice@contoso.com", "Alice Adams")

		result := updateUser("token", UpdateParams{
			ObjectID:    alice.ID,
			DisplayName: strPtr("Alice A. Adams"),
			Department:  strPtr("Engineering"),
			OfficePhone: strPtr("555-0100"),
		}, RunOptions{})

		assert.Equal(t, LC_SUCCESS_LABEL, result.Status)
		assert.Equal(t, "Alice A. Adams", result.User.DisplayName)
		assert.Equal(t, "Engineering", result.User.Department)
		assert.Equal(t, []string{"555-0100"}, result.User.BusinessPhones)
	})

	t.Run("manager pointer semantics", func(t *testing.T) {
		t.Run("present and empty clears the manager", func(t *testing.T) {
			fake := newFakeDirectory(t)
			alice := fake.addUser("alice@contoso.com", "Alice Adams")
			boss := fake.addUser("boss@contoso.com", "Bobbie Boss")
			fake.managers[alice.ID] = boss.ID

			result := updateUser("token", UpdateParams{
				UserPrincipalName: "alice@contoso.com",
				ManagerUPN:        strPtr(""),
			}, RunOptions{})

			assert.Equal(t, LC_SUCCESS_LABEL, result.Status)
			assert.NotContains(t, fake.managers, alice.ID)
		})

		t.Run("absent leaves the manager alone", func(t *testing.T) {
			fake := newFakeDirectory(t)
			alice := fake.addUser("alice@contoso.com", "Alice Adams")
			boss := fake.addUser("boss@contoso.com", "Bobbie Boss")
			fake.managers[alice.ID] = boss.ID

			result := updateUser("token", UpdateParams{
				UserPrincipalName: "alice@contoso.com",
				DisplayName:       strPtr("Alice A. Adams"),
			}, RunOptions{})

			assert.Equal(t, LC_SUCCESS_LABEL, result.Status)
			assert.Equal(t, boss.ID, fake.managers[alice.ID])
		})

		t.Run("present and set reassigns", func(t *testing.T) {
			fake := newFakeDirectory(t)
			alice := fake.addUser("alice@contoso.com", "Alice Adams")
			boss := fake.addUser("boss@contoso.com", "Bobbie Boss")

			result := updateUser("token", UpdateParams{
				UserPrincipalName: "alice@contoso.com",
				ManagerUPN:        strPtr("boss@contoso.com"),
			}, RunOptions{})

			assert.Equal(t, LC_SUCCESS_LABEL, result.Status)
			assert.Equal(t, boss.ID, fake.managers[alice.ID])
		})
	})

	t.Run("group membership changes are fault isolated", func(t *testing.T) {
		fake := newFakeDirectory(t)
		alice := fake.addUser("alice@contoso.com", "Alice Adams")
		sales := fake.addGroup("Sales Team")
		eng := fake.addGroup("Engineering")
		fake.groupMembers[sales.ID][alice.ID] = true

		result := updateUser("token", UpdateParams{
			UserPrincipalName: "alice@contoso.com",
			GroupsToAdd:       []string{"No Such Group", "Engineering"},
			GroupsToRemove:    []string{"Sales Team"},
		}, RunOptions{})

		// the bad group reference warns, everything else still happens
		assert.Equal(t, LC_SUCCESS_LABEL, result.Status)
		assert.True(t, fake.groupMembers[eng.ID][alice.ID])
		assert.False(t, fake.groupMembers[sales.ID][alice.ID])
	})

	t.Run("license changes replace the set in one call", func(t *testing.T) {
		fake := newFakeDirectory(t)
		alice := fake.addUser("alice@contoso.com", "Alice Adams")
		skuA := fake.addSku("ENTERPRISEPACK")
		skuB := fake.addSku("EMS")
		skuC := fake.addSku("VISIOCLIENT")
		fake.licenses[alice.ID] = []string{skuA, skuB}

		result := updateUser("token", UpdateParams{
			UserPrincipalName: "alice@contoso.com",
			LicensesToAssign:  []string{"VISIOCLIENT"},
			LicensesToRemove:  []string{"ENTERPRISEPACK"},
		}, RunOptions{})

		assert.Equal(t, LC_SUCCESS_LABEL, result.Status)
		assert.Equal(t, []string{skuB, skuC}, fake.licenses[alice.ID])

		assert.Len(t, fake.licenseCalls, 1)
		call := fake.licenseCalls[0]
		assert.Equal(t, []GraphLicenseToAdd{{SkuID: skuB}, {SkuID: skuC}}, call.AddLicenses)
		assert.Equal(t, []string{skuA}, call.RemoveLicenses)
	})

	t.Run("dry run resolves the target but mutates nothing", func(t *testing.T) {
		fake := newFakeDirectory(t)
		alice := fake.addUser("alice@contoso.com", "Alice Adams")

		result := updateUser("token", UpdateParams{
			UserPrincipalName: "alice@contoso.com",
			DisplayName:       strPtr("Alice A. Adams"),
			ManagerUPN:        strPtr(""),
		}, RunOptions{DryRun: true})

		assert.Equal(t, LC_SKIPPED_LABEL, result.Status)
		assert.Equal(t, "dry run, no changes applied", result.Detail)
		assert.Zero(t, fake.mutationCount())
		assert.Equal(t, "Alice Adams", fake.users[alice.ID].DisplayName)
	})
}

func TestReconcileLicenseSet(t *testing.T) {
	t.Run("removals then additions", func(t *testing.T) {
		final := reconcileLicenseSet([]string{"a", "b"}, []string{"c"}, []string{"a"})
		assert.Equal(t, []string{"b", "c"}, final)
	})

	t.Run("re-adding a held license is a no-op", func(t *testing.T) {
		final := reconcileLicenseSet([]string{"a"}, []string{"a"}, nil)
		assert.Equal(t, []string{"a"}, final)
	})

	t.Run("removal wins over addition", func(t *testing.T) {
		final := reconcileLicenseSet([]string{"a"}, []string{"b"}, []string{"b"})
		assert.Equal(t, []string{"a"}, final)
	})

	t.Run("stable under repeated application", func(t *testing.T) {
		once := reconcileLicenseSet([]string{"a", "b"}, []string{"c"}, []string{"a"})
		twice := reconcileLicenseSet(once, []string{"c"}, []string{"a"})
		assert.Equal(t, once, twice)
	})
}
