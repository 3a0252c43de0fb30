package models

import (
	"time"

	"github.com/google/uuid"
)

// Operator is an admin dashboard account. Every operator has full access;
// second-factor enrollment is forced on first login.
type Operator struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	TOTPSecret   *string   `json:"-"` // set during 2FA setup
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Needs2FASetup returns true if the operator has not completed 2FA enrollment.
func (o *Operator) Needs2FASetup() bool {
	return !o.TOTPEnabled
}
