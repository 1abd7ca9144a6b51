package totp

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Generator wraps TOTP secret provisioning and code verification with a
// bounded clock-drift tolerance.
type Generator struct {
	issuer string
	skew   uint
}

func NewGenerator(issuer string, skew uint) *Generator {
	return &Generator{issuer: issuer, skew: skew}
}

// GenerateSecret provisions a new shared secret for the account and
// returns the base32 secret plus the otpauth:// URI for QR rendering.
func (g *Generator) GenerateSecret(accountName string) (secret, provisioningURI string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      g.issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// Verify checks a time-based code against the secret, tolerating the
// configured number of 30-second steps of drift in either direction.
func (g *Generator) Verify(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      g.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
