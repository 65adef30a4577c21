package auth

import (
	"time"

	"github.com/juku001/SellazEngine/internal/shared"
)

// User represents an account in the distribution chain.
type User struct {
	ID            int64
	Name          string
	Email         string
	Role          shared.Role
	CompanyID     int64
	SuperDealerID int64
	PasswordHash  string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Principal converts the user into the authenticated-actor value carried
// through workflow calls.
func (u *User) Principal() shared.Principal {
	return shared.Principal{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		CompanyID:     u.CompanyID,
		SuperDealerID: u.SuperDealerID,
	}
}
