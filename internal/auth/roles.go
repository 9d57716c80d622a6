package auth

import (
	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
)

// roleRank orders roles for "at-least" checks. Roles outside the known set
// rank below buyer.
var roleRank = map[models.Role]int{
	models.RoleBuyer: 1,
	models.RoleAgent: 2,
	models.RoleAdmin: 3,
}

// IsAgent reports whether the role may manage listings: agents and admins.
func IsAgent(role models.Role) bool {
	return role == models.RoleAgent || role == models.RoleAdmin
}

// IsAdmin reports whether the role may approve or reject listings.
func IsAdmin(role models.Role) bool {
	return role == models.RoleAdmin
}

// IsBuyer reports whether the role may submit applications: buyers and admins.
func IsBuyer(role models.Role) bool {
	return role == models.RoleBuyer || role == models.RoleAdmin
}

// AtLeast reports whether role ranks at or above min in the
// buyer < agent < admin hierarchy.
func AtLeast(role, min models.Role) bool {
	return roleRank[role] >= roleRank[min]
}
