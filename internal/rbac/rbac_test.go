package rbac

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role string
		perm string
		want bool
	}{
		{RoleBuyer, PermHoldEscrow, true},
		{RoleBuyer, PermReleaseEscrow, true},
		{RoleBuyer, PermRefundEscrow, false},
		{RoleSeller, PermRefundEscrow, true},
		{RoleSeller, PermReleaseEscrow, false},
		{RoleAdmin, PermCleanupCarts, true},
		{RoleAdmin, PermReleaseEscrow, false},
		{"unknown", PermHoldEscrow, false},
	}
	for _, tt := range tests {
		if got := HasPermission(tt.role, tt.perm); got != tt.want {
			t.Errorf("HasPermission(%s, %s) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}
