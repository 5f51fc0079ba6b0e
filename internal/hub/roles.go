package hub

import "strings"

// Realm is the capability namespace a role belongs to. The prestige and vip
// point economies carry their own namespaces; membership-class reviews use a
// third one.
type Realm string

const (
	RealmPrestige Realm = "prestige"
	RealmVIP      Realm = "vip"
	RealmMC       Realm = "mc"
)

// Action names the operation a capability guards.
type Action string

const (
	ActionRequest  Action = "request"
	ActionNominate Action = "nominate"
	ActionAward    Action = "award"
	ActionDeduct   Action = "deduct"
	ActionView     Action = "view"
	ActionApprove  Action = "approve"
	ActionRevoke   Action = "revoke"
)

// Tier qualifies a role: the point tier for prestige award actions, or the
// review stage for membership-class approvals. Empty when the action is not
// tier-scoped.
type Tier string

const (
	TierGeneral  Tier = "general"
	TierRegional Tier = "regional"
	TierNational Tier = "national"
	TierDomain   Tier = "domain"
)

// Role is a typed (realm, action, tier) triple. It replaces ad-hoc string
// concatenation of capability names: the triple is composed into capability
// identifiers at this single boundary.
type Role struct {
	Realm  Realm
	Action Action
	Tier   Tier
}

func PrestigeRole(action Action, tier Tier) Role {
	return Role{Realm: RealmPrestige, Action: action, Tier: tier}
}

func VIPRole(action Action) Role {
	return Role{Realm: RealmVIP, Action: action}
}

func MCRole(action Action, tier Tier) Role {
	return Role{Realm: RealmMC, Action: action, Tier: tier}
}

func (r Role) String() string {
	parts := []string{string(r.Realm), string(r.Action)}
	if r.Tier != "" {
		parts = append(parts, string(r.Tier))
	}
	return strings.Join(parts, "_")
}

// Capabilities returns every capability identifier that satisfies this role.
// The vip realm widens to also accept the prestige-realm capability for the
// same action, so prestige officers can administer vip awards.
func (r Role) Capabilities() []string {
	if r.Realm == RealmVIP {
		prestige := Role{Realm: RealmPrestige, Action: r.Action, Tier: r.Tier}
		return []string{r.String(), prestige.String()}
	}
	return []string{r.String()}
}

// CapabilityList flattens the capability identifiers of several roles,
// deduplicated, preserving order.
func CapabilityList(roles []Role) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		for _, capability := range role.Capabilities() {
			if _, ok := seen[capability]; ok {
				continue
			}
			seen[capability] = struct{}{}
			out = append(out, capability)
		}
	}
	return out
}
