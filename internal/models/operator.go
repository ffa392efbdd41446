package models

import (
	"database/sql"
	"time"
)

// Role is an operator's authorization level.
type Role string

const (
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// CanOperate reports whether the role may trigger and inspect check-in runs.
func (r Role) CanOperate() bool {
	return r == RoleOperator || r == RoleAdmin
}

// Operator is an API principal authenticated by a hashed key.
type Operator struct {
	ID         int64        `db:"id"`
	Name       string       `db:"name"`
	Role       Role         `db:"role"`
	APIKeyHash string       `db:"api_key_hash"`
	DisabledAt sql.NullTime `db:"disabled_at"`
	CreatedAt  time.Time    `db:"created_at"`
}
