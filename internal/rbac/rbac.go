package rbac

// Role constants. Buyer and seller are per-escrow roles, not account types:
// the same user can be buyer on one record and seller on another.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Permission constants
const (
	PermHoldEscrow    = "hold_escrow"    // report contract deployment, pending -> held
	PermReleaseEscrow = "release_escrow" // held -> released
	PermRefundEscrow  = "refund_escrow"  // held -> refunded
	PermCleanupCarts  = "cleanup_carts"  // system-wide stale-cart sweep
	PermListAllNotifs = "list_all_notifications"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleBuyer: {
		PermHoldEscrow, PermReleaseEscrow,
		// Buyer CANNOT refund: only the seller returns funds.
	},
	RoleSeller: {
		PermRefundEscrow,
	},
	RoleAdmin: {
		PermCleanupCarts, PermListAllNotifs,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}
