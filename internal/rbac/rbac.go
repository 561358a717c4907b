// Package rbac holds the fixed role enumeration and the stateless
// authorization predicates evaluated by both the API layer and the
// navigation state machine.
package rbac

// Role is one of the fixed wire-level role identifiers.
type Role string

const (
	// RoleBase is implicit: every account holds it.
	RoleBase Role = "ROLE_USER"
	// RoleAdmin grants the admin area and all management operations.
	RoleAdmin Role = "ROLE_ADMIN"
	// RoleShareholder grants the actionnaire area.
	RoleShareholder Role = "ROLE_ACTIONNAIRE"
	// RoleDev is the generic developer role; it grants both products.
	RoleDev Role = "ROLE_DEV"
	// RoleLMNP and RoleSCI are the product-specific developer roles.
	RoleLMNP Role = "ROLE_LMNP"
	RoleSCI  Role = "ROLE_SCI"
)

// AllRoles lists every assignable role. RoleBase is excluded: it is never
// assigned explicitly.
var AllRoles = []Role{RoleAdmin, RoleShareholder, RoleDev, RoleLMNP, RoleSCI}

// App identifies one of the two products.
type App string

const (
	AppLMNP App = "lmnp"
	AppSCI  App = "sci"
)

// ValidApp reports whether s names a known product.
func ValidApp(s string) bool {
	return App(s) == AppLMNP || App(s) == AppSCI
}

// RoleSet is an unordered collection of roles.
type RoleSet []Role

// Has reports whether the set contains r.
func (s RoleSet) Has(r Role) bool {
	for _, v := range s {
		if v == r {
			return true
		}
	}
	return false
}

// WithBase returns the set with RoleBase appended if missing. Stored role
// sets always carry the base role.
func (s RoleSet) WithBase() RoleSet {
	if s.Has(RoleBase) {
		return s
	}
	return append(append(RoleSet{}, s...), RoleBase)
}

// rolePriority is the explicit landing-dashboard order, so multi-role
// accounts land deterministically.
var rolePriority = []Role{RoleAdmin, RoleShareholder, RoleLMNP, RoleSCI, RoleDev}

// Primary returns the role that decides which dashboard a multi-role user
// lands on first. Returns RoleBase when the set holds no assignable role.
func Primary(s RoleSet) Role {
	for _, r := range rolePriority {
		if s.Has(r) {
			return r
		}
	}
	return RoleBase
}

// Decision is the outcome of a predicate: allowed, or denied with a
// human-readable reason.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision            { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// CanAccessAdmin gates the admin dashboards.
func CanAccessAdmin(s RoleSet) Decision {
	if s.Has(RoleAdmin) {
		return allow()
	}
	return deny("administrator role required")
}

// CanAccessShareholderArea gates the actionnaire screens. Admins can reach
// them too (they manage the registry).
func CanAccessShareholderArea(s RoleSet) Decision {
	if s.Has(RoleAdmin) || s.Has(RoleShareholder) {
		return allow()
	}
	return deny("shareholder or administrator role required")
}

// CanAccessProduct gates the developer time-tracking screens. The generic
// developer role grants both products; holding it alongside a specific role
// is legal (union semantics).
func CanAccessProduct(s RoleSet, app App) Decision {
	if s.Has(RoleDev) {
		return allow()
	}
	switch app {
	case AppLMNP:
		if s.Has(RoleLMNP) {
			return allow()
		}
	case AppSCI:
		if s.Has(RoleSCI) {
			return allow()
		}
	}
	return deny("developer role for this product required")
}

// CanManageUsers gates user lifecycle operations.
func CanManageUsers(s RoleSet) Decision { return CanAccessAdmin(s) }

// CanManageShareholders gates the actionnaire registry mutations.
func CanManageShareholders(s RoleSet) Decision { return CanAccessAdmin(s) }

// CanManageHoursPlanning gates quota override upserts and resets.
func CanManageHoursPlanning(s RoleSet) Decision { return CanAccessAdmin(s) }

// CanDeleteTimeEntry allows only the owner. There is no admin override:
// deleting someone else's entries is unsupported.
func CanDeleteTimeEntry(ownerID, requesterID string) Decision {
	if ownerID == requesterID {
		return allow()
	}
	return deny("only the owner may delete a time entry")
}

// CanDeleteUser forbids self-deletion for everyone, admins included.
func CanDeleteUser(requesterID, targetID string) Decision {
	if requesterID == targetID {
		return deny("you cannot delete your own account")
	}
	return allow()
}
