package util

import (
	"strings"

	"github.com/google/uuid"
)

const referralCodeLength = 8

// GenerateReferralCode returns an 8 character uppercase hex code.
func GenerateReferralCode() string {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return code[:referralCodeLength]
}
