package rbac

// Role constants
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

func IsValidRole(role string) bool {
	return role == RoleBuyer || role == RoleSeller || role == RoleAdmin
}

// Permission constants
const (
	PermCreateProduct   = "create_product"
	PermInitiatePayment = "initiate_payment"
	PermViewWallet      = "view_wallet"
	PermBlockUser       = "block_user"
)

// RolePermissions defines what each role can do. Confirming an order is not
// permission-gated here: it is party-based and checked against the order
// itself.
var RolePermissions = map[string][]string{
	RoleBuyer: {
		PermInitiatePayment,
	},
	RoleSeller: {
		PermCreateProduct, PermViewWallet,
	},
	RoleAdmin: {
		PermBlockUser,
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
