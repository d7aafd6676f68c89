package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

// Action is an operation guarded by the gate
type Action string

const (
	ActionList       Action = "list"
	ActionGet        Action = "get"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionVerify     Action = "verify"
	ActionDeactivate Action = "deactivate"
	ActionLike       Action = "like"
	ActionComment    Action = "comment"
)

// Resource names that are not entity kinds
const (
	ResourceComment = "Comment"
)

// Match selects which field of a target must equal the principal id
type Match int

const (
	MatchNone  Match = iota
	MatchSelf        // Target.ID
	MatchOwner       // Target.OwnerID
)

// Rule admits principals holding one of Roles outright, or principals acting in
// Holder whose id matches the target as selected by Match.
type Rule struct {
	Roles  []Role
	Match  Match
	Holder Role // Empty admits any role
}

// Target identifies the record an action applies to
type Target struct {
	ID      string
	OwnerID string
}

// Policy maps a resource name and action to its rule
type Policy map[string]map[Action]Rule

var (
	anyone    = []Role{RoleStudent, RoleFaculty}
	adminOnly = []Role{RoleAdmin}
)

func ownedRules() map[Action]Rule {
	return map[Action]Rule{
		ActionList:   {Roles: anyone},
		ActionGet:    {Roles: anyone},
		ActionCreate: {Roles: adminOnly, Match: MatchOwner, Holder: RoleStudent},
		ActionUpdate: {Roles: []Role{RoleFaculty}, Match: MatchOwner, Holder: RoleStudent},
		ActionDelete: {Roles: adminOnly, Match: MatchOwner, Holder: RoleStudent},
		ActionVerify: {Roles: []Role{RoleFaculty}},
	}
}

// DefaultPolicy returns the access rules of the service
func DefaultPolicy() Policy {
	p := Policy{
		models.StudentKind.Name: {
			ActionList:       {Roles: anyone},
			ActionGet:        {Roles: anyone},
			ActionCreate:     {Roles: adminOnly},
			ActionUpdate:     {Roles: adminOnly, Match: MatchSelf, Holder: RoleStudent},
			ActionDelete:     {Roles: adminOnly},
			ActionDeactivate: {Roles: adminOnly},
		},
		models.FacultyKind.Name: {
			ActionList:   {Roles: anyone},
			ActionGet:    {Roles: anyone},
			ActionCreate: {Roles: adminOnly},
			ActionUpdate: {Roles: adminOnly, Match: MatchSelf, Holder: RoleFaculty},
			ActionDelete: {Roles: adminOnly},
		},
		models.PostKind.Name: {
			ActionList:    {Roles: anyone},
			ActionGet:     {Roles: anyone},
			ActionCreate:  {Roles: []Role{RoleFaculty}},
			ActionDelete:  {Roles: adminOnly, Match: MatchOwner, Holder: RoleFaculty},
			ActionLike:    {Roles: anyone},
			ActionComment: {Roles: anyone},
		},
		ResourceComment: {
			ActionDelete: {Roles: adminOnly, Match: MatchOwner},
		},
	}
	for _, k := range models.OwnedKinds() {
		p[k.Name] = ownedRules()
	}
	return p
}

// Gate enforces a Policy on the principal carried by the request context
type Gate struct {
	policy Policy
	logger zerolog.Logger
}

// NewGate creates a gate for policy
func NewGate(policy Policy, logger zerolog.Logger) *Gate {
	return &Gate{policy: policy, logger: logger}
}

// Decision is the outcome of the role check. When Pending is true the
// principal may only proceed on targets it matches; call Allow once the target is known.
type Decision struct {
	Principal Principal
	Pending   bool
	resource  string
	action    Action
	rule      Rule
}

// Authorize performs the checks that need no stored data. Callers run it before
// touching the store.
func (g *Gate) Authorize(ctx context.Context, resource string, action Action) (Decision, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return Decision{}, apperrors.NewUnauthenticatedError("authentication required")
	}
	rule, ok := g.policy[resource][action]
	if !ok {
		return Decision{}, g.deny(p, resource, action)
	}
	d := Decision{Principal: p, resource: resource, action: action, rule: rule}
	for _, r := range rule.Roles {
		if p.Holds(r) {
			return d, nil
		}
	}
	if rule.Match != MatchNone && (rule.Holder == "" || p.Role == rule.Holder) {
		d.Pending = true
		return d, nil
	}
	return Decision{}, g.deny(p, resource, action)
}

// Allow completes a pending decision against target
func (g *Gate) Allow(d Decision, target Target) error {
	if !d.Pending {
		return nil
	}
	var id string
	switch d.rule.Match {
	case MatchSelf:
		id = target.ID
	case MatchOwner:
		id = target.OwnerID
	}
	if id != "" && id == d.Principal.ID {
		return nil
	}
	return g.deny(d.Principal, d.resource, d.action)
}

// Check runs Authorize and Allow in one step for targets known up front
func (g *Gate) Check(ctx context.Context, resource string, action Action, target Target) (Principal, error) {
	d, err := g.Authorize(ctx, resource, action)
	if err != nil {
		return Principal{}, err
	}
	if err := g.Allow(d, target); err != nil {
		return Principal{}, err
	}
	return d.Principal, nil
}

func (g *Gate) deny(p Principal, resource string, action Action) error {
	g.logger.Warn().
		Str("principal", p.ID).
		Str("role", string(p.Role)).
		Str("resource", resource).
		Str("action", string(action)).
		Msg("Access denied")
	return apperrors.NewForbiddenError(fmt.Sprintf("%s cannot %s %s", p.Role, action, resource))
}
