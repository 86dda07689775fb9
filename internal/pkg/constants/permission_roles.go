package constants

// PermissionRoles maps each permission to roles allowed to perform it.
var PermissionRoles = map[string][]string{
	BuyGold:              {Customer, Admin},
	SellGold:             {Customer, Admin},
	Invest:               {Customer, Admin},
	TopupWallet:          {Customer, Admin},
	ReplySupport:         {Support, Admin},
	ManageCustomers:      {Admin},
	ManagePaymentMethods: {Admin},
	ManagePlans:          {Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
