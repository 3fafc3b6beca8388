package model

import "time"

const (
	RoleFarmer = "FARMER"
	RoleBuyer  = "BUYER"
	RoleAdmin  = "ADMIN"
)

const (
	UserActive              = "ACTIVE"
	UserInactive            = "INACTIVE"
	UserSuspended           = "SUSPENDED"
	UserPendingVerification = "PENDING_VERIFICATION"
)

const (
	KYCPending     = "PENDING"
	KYCVerified    = "VERIFIED"
	KYCRejected    = "REJECTED"
	KYCUnderReview = "UNDER_REVIEW"
)

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	KYCStatus    string     `json:"kyc_status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CanParticipateInAuctions reports whether the user passes auction admission:
// an active account with verified KYC.
func (u *User) CanParticipateInAuctions() bool {
	return u.Status == UserActive && u.KYCStatus == KYCVerified
}

// CanCreateAuctions additionally requires the farmer role.
func (u *User) CanCreateAuctions() bool {
	return u.Role == RoleFarmer && u.CanParticipateInAuctions()
}
