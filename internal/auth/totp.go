package auth

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTP parameters shared by enrolment and verification: six digits, a 30s
// period and one step of clock skew either way. Codes are not tracked, so a
// code can be replayed within its window.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

func newTwoFactorSetup(issuer, account string) (*TwoFactorSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      totpOpts.Period,
		Digits:      totpOpts.Digits,
		Algorithm:   totpOpts.Algorithm,
	})
	if err != nil {
		return nil, err
	}
	return &TwoFactorSetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

// ValidateCode reports whether code is valid for secret at the given time.
func ValidateCode(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at.UTC(), totpOpts)
	return err == nil && ok
}

// GenerateCode returns the code for secret at the given time.
func GenerateCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at.UTC(), totpOpts)
}
