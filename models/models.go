package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is one record of the user directory.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Name  string `bun:"name,notnull"`
	Email string `bun:"email,notnull"`
	Role  string `bun:"role,notnull"`
	// SearchKey is the case-folded name, email and role used by list search.
	SearchKey string    `bun:"search_key,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// AuditLog captures immutable change history for directory mutations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	RequestID  string    `bun:"request_id,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// SchemaMigration records an applied migration file.
type SchemaMigration struct {
	bun.BaseModel `bun:"table:schema_migrations,alias:sm"`

	Name      string    `bun:"name,pk"`
	AppliedAt time.Time `bun:"applied_at,notnull,default:current_timestamp"`
}
