// Package authz decides who may mutate a recipe.
package authz

import (
	"fmt"
	"strconv"

	"github.com/Notemat/foodgram/entities"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Safe methods match a policy row; anything else requires r.sub to own r.obj.
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.act == p.act || r.sub == r.obj.Owner
`

var safeMethods = []string{"GET", "HEAD", "OPTIONS"}

type (
	Authorizer interface {
		CanMutate(userID uint, recipe *entities.Recipe, method string) (bool, error)
	}

	// Resource is the attribute bag the matcher reads.
	Resource struct {
		Owner string
	}

	authorizer struct {
		enforcer *casbin.SyncedEnforcer
	}
)

func NewAuthorizer() (Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("parse authz model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	for _, method := range safeMethods {
		if _, err := e.AddPolicy(method); err != nil {
			return nil, fmt.Errorf("add policy %s: %w", method, err)
		}
	}
	return &authorizer{enforcer: e}, nil
}

func (a *authorizer) CanMutate(userID uint, recipe *entities.Recipe, method string) (bool, error) {
	sub := ""
	if userID != 0 {
		sub = strconv.FormatUint(uint64(userID), 10)
	}
	obj := Resource{Owner: strconv.FormatUint(uint64(recipe.AuthorID), 10)}
	return a.enforcer.Enforce(sub, obj, method)
}
