package rbac_test

import (
	"database/sql"
	"testing"

	"stowage.sh/core/rbac"

	adapter "github.com/Blank-Xu/sql-adapter"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T) *rbac.Enforcer {
	db, err := sql.Open("sqlite3", ":memory:")
	assert.NoError(t, err)

	a, err := adapter.NewAdapter(db, "sqlite3", "acl")
	assert.NoError(t, err)

	m, err := model.NewModelFromString(rbac.Model)
	assert.NoError(t, err)

	e, err := casbin.NewEnforcer(m, a)
	assert.NoError(t, err)

	e.EnableAutoSave(false)

	return &rbac.Enforcer{E: e}
}

func TestGroupMembership(t *testing.T) {
	e := setup(t)

	err := e.AddGroup("rustaceans")
	assert.NoError(t, err)

	err = e.AddGroupMember("rustaceans", "alice")
	assert.NoError(t, err)

	ok, err := e.IsGroupMember("rustaceans", "alice")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.IsGroupMember("rustaceans", "bob")
	assert.NoError(t, err)
	assert.False(t, ok)

	members, err := e.GetGroupMembers("rustaceans")
	assert.NoError(t, err)
	assert.Equal(t, []string{"alice"}, members)
}

func TestRemoveGroupMember(t *testing.T) {
	e := setup(t)

	assert.NoError(t, e.AddGroup("rustaceans"))
	assert.NoError(t, e.AddGroupMember("rustaceans", "alice"))
	assert.NoError(t, e.RemoveGroupMember("rustaceans", "alice"))

	ok, err := e.IsGroupMember("rustaceans", "alice")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidGroupName(t *testing.T) {
	e := setup(t)

	err := e.AddGroup("not/a/group")
	assert.Error(t, err)
}
