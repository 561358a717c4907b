package rbac

import "testing"

// allSubsets enumerates every subset of AllRoles.
func allSubsets() []RoleSet {
	n := len(AllRoles)
	subsets := make([]RoleSet, 0, 1<<n)
	for mask := 0; mask < 1<<n; mask++ {
		var s RoleSet
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				s = append(s, AllRoles[i])
			}
		}
		subsets = append(subsets, s)
	}
	return subsets
}

func TestCanAccessAdmin_Exhaustive(t *testing.T) {
	for _, s := range allSubsets() {
		got := CanAccessAdmin(s)
		want := s.Has(RoleAdmin)
		if got.Allowed != want {
			t.Errorf("CanAccessAdmin(%v) = %v, want %v", s, got.Allowed, want)
		}
		if !got.Allowed && got.Reason == "" {
			t.Errorf("CanAccessAdmin(%v) denied without a reason", s)
		}
	}
}

func TestCanAccessShareholderArea(t *testing.T) {
	for _, s := range allSubsets() {
		got := CanAccessShareholderArea(s)
		want := s.Has(RoleAdmin) || s.Has(RoleShareholder)
		if got.Allowed != want {
			t.Errorf("CanAccessShareholderArea(%v) = %v, want %v", s, got.Allowed, want)
		}
	}
}

func TestCanAccessProduct_Union(t *testing.T) {
	tests := []struct {
		name  string
		roles RoleSet
		app   App
		want  bool
	}{
		{"specific role matching product", RoleSet{RoleLMNP}, AppLMNP, true},
		{"specific role other product", RoleSet{RoleLMNP}, AppSCI, false},
		{"generic dev grants lmnp", RoleSet{RoleDev}, AppLMNP, true},
		{"generic dev grants sci", RoleSet{RoleDev}, AppSCI, true},
		{"generic plus specific", RoleSet{RoleDev, RoleSCI}, AppLMNP, true},
		{"admin alone has no product access", RoleSet{RoleAdmin}, AppLMNP, false},
		{"empty set", nil, AppSCI, false},
		{"sci role matching", RoleSet{RoleSCI}, AppSCI, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessProduct(tt.roles, tt.app); got.Allowed != tt.want {
				t.Errorf("CanAccessProduct(%v, %q) = %v, want %v", tt.roles, tt.app, got.Allowed, tt.want)
			}
		})
	}
}

func TestManagementPredicates_AdminOnly(t *testing.T) {
	preds := map[string]func(RoleSet) Decision{
		"CanManageUsers":         CanManageUsers,
		"CanManageShareholders":  CanManageShareholders,
		"CanManageHoursPlanning": CanManageHoursPlanning,
	}
	for name, pred := range preds {
		if !pred(RoleSet{RoleAdmin}).Allowed {
			t.Errorf("%s should allow admin", name)
		}
		if pred(RoleSet{RoleShareholder, RoleDev, RoleLMNP, RoleSCI}).Allowed {
			t.Errorf("%s should deny everything but admin", name)
		}
	}
}

func TestCanDeleteTimeEntry_OwnerOnly(t *testing.T) {
	if !CanDeleteTimeEntry("u1", "u1").Allowed {
		t.Error("owner should be allowed to delete their entry")
	}
	if CanDeleteTimeEntry("u1", "u2").Allowed {
		t.Error("non-owner must not delete an entry, admin or not")
	}
}

func TestCanDeleteUser_SelfForbidden(t *testing.T) {
	if CanDeleteUser("u1", "u1").Allowed {
		t.Error("self-deletion must always be denied")
	}
	if !CanDeleteUser("admin", "u2").Allowed {
		t.Error("deleting another account should be allowed by the predicate")
	}
}

func TestPrimary_Priority(t *testing.T) {
	tests := []struct {
		roles RoleSet
		want  Role
	}{
		{RoleSet{RoleDev, RoleAdmin}, RoleAdmin},
		{RoleSet{RoleSCI, RoleShareholder}, RoleShareholder},
		{RoleSet{RoleDev, RoleSCI}, RoleSCI},
		{RoleSet{RoleDev, RoleLMNP, RoleSCI}, RoleLMNP},
		{RoleSet{RoleDev}, RoleDev},
		{RoleSet{RoleBase}, RoleBase},
		{nil, RoleBase},
	}
	for _, tt := range tests {
		if got := Primary(tt.roles); got != tt.want {
			t.Errorf("Primary(%v) = %q, want %q", tt.roles, got, tt.want)
		}
	}
}

func TestWithBase(t *testing.T) {
	s := RoleSet{RoleAdmin}.WithBase()
	if !s.Has(RoleBase) {
		t.Error("WithBase should append the base role")
	}
	if n := len(RoleSet{RoleAdmin, RoleBase}.WithBase()); n != 2 {
		t.Errorf("WithBase should not duplicate the base role, got %d roles", n)
	}
}
