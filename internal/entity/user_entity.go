// FILE: internal/entity/user_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleReviewer UserRole = "reviewer"
	UserRoleCurator  UserRole = "curator"
	UserRoleAdmin    UserRole = "admin"

	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// User is a staff account: reviewers get feedback notifications, curators
// manage the golden store, admins do both. Question askers are not users;
// they are identified by client key and may stay anonymous.
type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         UserRole
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) CanCurate() bool {
	return u.Role == UserRoleCurator || u.Role == UserRoleAdmin
}
