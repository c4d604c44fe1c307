package domain

import "time"

// RoleName is one of the fixed back-office roles.
type RoleName string

const (
	RoleAdmin     RoleName = "ADMIN"
	RoleOps       RoleName = "OPS"
	RoleFinance   RoleName = "FINANCE"
	RoleMarketing RoleName = "MARKETING"
)

// RoleNames lists every valid role in declaration order.
var RoleNames = []RoleName{RoleAdmin, RoleOps, RoleFinance, RoleMarketing}

var roleDescriptions = map[RoleName]string{
	RoleAdmin:     "Full administrative access",
	RoleOps:       "Operations staff with limited access",
	RoleFinance:   "Finance staff with access to payments and reporting",
	RoleMarketing: "Marketing staff with access to campaigns and content",
}

func (n RoleName) Valid() bool {
	_, ok := roleDescriptions[n]
	return ok
}

// DefaultDescription is used when a role is created lazily.
func (n RoleName) DefaultDescription() string {
	return roleDescriptions[n]
}

func (n RoleName) String() string { return string(n) }

// Role is immutable once created.
type Role struct {
	ID          string
	Name        RoleName
	Description string
	CreatedAt   time.Time
}
