package rbac

import (
	"database/sql"
	"fmt"
	"regexp"

	adapter "github.com/Blank-Xu/sql-adapter"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	Registry = "registry" // single policy domain, the registry itself
)

const (
	Model = `
[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.act == p.act && r.dom == p.dom && r.obj == p.obj && g(r.sub, p.sub, r.dom)
`
)

// Enforcer answers group-membership questions for package ownership.
// Individual ownership lives in the package_owners table; groups and
// their members live here as casbin grouping policies.
type Enforcer struct {
	E *casbin.Enforcer
}

func NewEnforcer(path string) (*Enforcer, error) {
	m, err := model.NewModelFromString(Model)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=1")
	if err != nil {
		return nil, err
	}

	a, err := adapter.NewAdapter(db, "sqlite3", "acl")
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m, a)
	if err != nil {
		return nil, err
	}

	e.EnableAutoSave(false)

	return &Enforcer{e}, nil
}

var groupRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

func checkGroupFormat(group string) error {
	if !groupRegex.MatchString(group) {
		return fmt.Errorf("invalid group name: %q", group)
	}
	return nil
}

func intoGroup(group string) string {
	return "group:" + group
}

// AddGroup registers a group and the publish right its members hold
// over packages the group owns.
func (e *Enforcer) AddGroup(group string) error {
	if err := checkGroupFormat(group); err != nil {
		return err
	}

	_, err := e.E.AddPolicy(intoGroup(group), Registry, Registry, "pkg:publish")
	return err
}

func (e *Enforcer) RemoveGroup(group string) error {
	if err := checkGroupFormat(group); err != nil {
		return err
	}

	_, err := e.E.DeleteRole(intoGroup(group))
	return err
}

func (e *Enforcer) AddGroupMember(group, account string) error {
	if err := checkGroupFormat(group); err != nil {
		return err
	}

	_, err := e.E.AddGroupingPolicy(account, intoGroup(group), Registry)
	return err
}

func (e *Enforcer) RemoveGroupMember(group, account string) error {
	if err := checkGroupFormat(group); err != nil {
		return err
	}

	_, err := e.E.RemoveGroupingPolicy(account, intoGroup(group), Registry)
	return err
}

// IsGroupMember reports whether the account belongs to the group,
// directly or through nested roles.
func (e *Enforcer) IsGroupMember(group, account string) (bool, error) {
	if err := checkGroupFormat(group); err != nil {
		return false, err
	}

	roles, err := e.E.GetImplicitRolesForUser(account, Registry)
	if err != nil {
		return false, err
	}

	target := intoGroup(group)
	for _, role := range roles {
		if role == target {
			return true, nil
		}
	}
	return false, nil
}

func (e *Enforcer) GetGroupMembers(group string) ([]string, error) {
	if err := checkGroupFormat(group); err != nil {
		return nil, err
	}

	return e.E.GetUsersForRole(intoGroup(group), Registry)
}
