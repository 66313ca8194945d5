package ownership_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"stowage.sh/core/rbac"
	"stowage.sh/core/registry/models"
	"stowage.sh/core/registry/ownership"
)

func setup(t *testing.T) (*rbac.Enforcer, *ownership.Resolver) {
	t.Helper()

	enforcer, err := rbac.NewEnforcer(filepath.Join(t.TempDir(), "acl.db"))
	require.NoError(t, err)

	return enforcer, ownership.NewResolver(enforcer)
}

func TestEffectiveRightsIndividualOwner(t *testing.T) {
	_, resolver := setup(t)

	owners := []models.Owner{
		{Kind: models.OwnerKindUser, Account: "alice"},
	}

	rights, err := resolver.EffectiveRights(models.Requester{Account: "alice"}, owners)
	require.NoError(t, err)
	assert.Equal(t, models.RightsFull, rights)

	rights, err = resolver.EffectiveRights(models.Requester{Account: "bob"}, owners)
	require.NoError(t, err)
	assert.Equal(t, models.RightsNone, rights)
}

func TestEffectiveRightsGroupMember(t *testing.T) {
	enforcer, resolver := setup(t)

	require.NoError(t, enforcer.AddGroup("rustaceans"))
	require.NoError(t, enforcer.AddGroupMember("rustaceans", "bob"))

	owners := []models.Owner{
		{Kind: models.OwnerKindUser, Account: "alice"},
		{Kind: models.OwnerKindGroup, Account: "rustaceans"},
	}

	rights, err := resolver.EffectiveRights(models.Requester{Account: "bob"}, owners)
	require.NoError(t, err)
	assert.Equal(t, models.RightsPublish, rights)
}

func TestEffectiveRightsOwnerInOwningGroup(t *testing.T) {
	// an individual owner who is also a group member holds Full, not
	// Publish
	enforcer, resolver := setup(t)

	require.NoError(t, enforcer.AddGroup("rustaceans"))
	require.NoError(t, enforcer.AddGroupMember("rustaceans", "alice"))

	owners := []models.Owner{
		{Kind: models.OwnerKindGroup, Account: "rustaceans"},
		{Kind: models.OwnerKindUser, Account: "alice"},
	}

	rights, err := resolver.EffectiveRights(models.Requester{Account: "alice"}, owners)
	require.NoError(t, err)
	assert.Equal(t, models.RightsFull, rights)
}
