package model

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestCanParticipateInAuctions(t *testing.T) {
	u := &User{Role: RoleBuyer, Status: UserActive, KYCStatus: KYCVerified}
	check.True(t, u.CanParticipateInAuctions())

	u.KYCStatus = KYCPending
	check.False(t, u.CanParticipateInAuctions())

	u.KYCStatus = KYCVerified
	u.Status = UserSuspended
	check.False(t, u.CanParticipateInAuctions())
}

func TestCanCreateAuctions(t *testing.T) {
	u := &User{Role: RoleFarmer, Status: UserActive, KYCStatus: KYCVerified}
	check.True(t, u.CanCreateAuctions())

	u.Role = RoleBuyer
	check.False(t, u.CanCreateAuctions())
}
