package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
)

// User is the single account table behind all three roles. Doctor-only and
// patient-only columns stay empty for the other roles.
type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"` // Soft Delete

	Username     string      `gorm:"column:username;type:varchar(80);uniqueIndex;not null"`
	PasswordHash string      `gorm:"column:password_hash;type:varchar(255);not null"`
	Role         domain.Role `gorm:"column:role;type:varchar(20);not null;index"`

	FirstName   string `gorm:"column:first_name;type:varchar(50)"`
	LastName    string `gorm:"column:last_name;type:varchar(50)"`
	PhoneNumber string `gorm:"column:phone_number;type:varchar(11)"`

	// Doctors only
	Specialization string `gorm:"column:specialization;type:varchar(100);index"`
	// Patients only
	DateOfBirth *time.Time `gorm:"column:date_of_birth;type:date"`

	IsActive    bool       `gorm:"column:is_active;default:true;index"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

func (User) TableName() string {
	return "auth.users"
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

type RegisterPatientCommand struct {
	Username    string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	DateOfBirth time.Time
}

type RegisterDoctorCommand struct {
	Username       string
	Password       string
	FirstName      string
	LastName       string
	PhoneNumber    string
	Specialization string
}

type RegisterAdminCommand struct {
	Username string
	Password string
}

// ListUsersQuery filters a single role. Search matches username, names and
// specialization case-insensitively.
type ListUsersQuery struct {
	Role     domain.Role
	Search   string
	Page     int
	PageSize int
}

type PagedUsers struct {
	Users      []*User
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
