package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionLogin  AuditAction = "login"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	UserRole  Role      `gorm:"column:user_role;type:varchar(30);not null"`
	IPAddress string    `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	RequestID string `gorm:"column:request_id;type:varchar(50);index"`
	Changes   string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}

type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID   uuid.UUID `json:"sub"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}
