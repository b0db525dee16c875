package rbac

import (
	"fmt"
	"slices"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

const Model = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.act == p.act
`

// Authorizer answers role/permission questions for HTTP guards and services.
type Authorizer interface {
	Can(role user.Role, permission user.Permission) bool
	Permissions(role user.Role) []user.Permission
}

type Enforcer struct {
	E *casbin.Enforcer
}

// NewEnforcer builds an in-memory enforcer from a role → permissions table.
func NewEnforcer(table map[user.Role][]user.Permission) (*Enforcer, error) {
	m, err := model.NewModelFromString(Model)
	if err != nil {
		return nil, fmt.Errorf("parse rbac model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	var rules [][]string
	for role, perms := range table {
		for _, p := range perms {
			rules = append(rules, []string{string(role), string(p)})
		}
	}
	if len(rules) > 0 {
		if _, err := e.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("load policies: %w", err)
		}
	}

	return &Enforcer{E: e}, nil
}

// NewDefaultEnforcer loads user.RolePermissions.
func NewDefaultEnforcer() (*Enforcer, error) {
	return NewEnforcer(user.RolePermissions)
}

func (e *Enforcer) Can(role user.Role, permission user.Permission) bool {
	ok, err := e.E.Enforce(string(role), string(permission))
	return err == nil && ok
}

// Permissions lists what role may do.
func (e *Enforcer) Permissions(role user.Role) []user.Permission {
	policies, err := e.E.GetFilteredPolicy(0, string(role))
	if err != nil {
		return nil
	}
	out := make([]user.Permission, 0, len(policies))
	for _, p := range policies {
		out = append(out, user.Permission(p[1]))
	}
	slices.Sort(out)
	return out
}
