package model

import (
	"time"

	"github.com/google/uuid"
)

// RoleAdministrator is the role whose members receive stock alerts.
const RoleAdministrator = "administrator"

// User is the slice of the identity store the notification engine needs:
// who is active, what roles they hold and where to reach them.
type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	Name        string    `json:"name" db:"name"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	IsSuperuser bool      `json:"is_superuser" db:"is_superuser"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
