// Package auth verifies capability tokens presented by callers of
// governance-gated operations. Token issuance and delegation policy live
// outside this service; this package only checks that a presented credential
// is valid for the requested scope.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
)

var ErrUnauthorized = errors.New("missing or invalid capability token")

// Verifier checks capability tokens. Privileged operations take the token as
// an explicit argument; there is no ambient authority anywhere in the core.
type Verifier interface {
	// VerifyGovernance checks a token required for rate updates and for
	// vault creation/destruction.
	VerifyGovernance(ctx context.Context, token string) error
	// VerifyCustody checks a token required for deposit/withdraw when the
	// caller is an intermediating module rather than a direct owner.
	VerifyCustody(ctx context.Context, token string) error
}

// StaticVerifier validates tokens against values fixed in configuration.
type StaticVerifier struct {
	governanceToken string
	custodyToken    string
}

func NewStaticVerifier(governanceToken, custodyToken string) *StaticVerifier {
	return &StaticVerifier{
		governanceToken: governanceToken,
		custodyToken:    custodyToken,
	}
}

func (v *StaticVerifier) VerifyGovernance(_ context.Context, token string) error {
	return verify(v.governanceToken, token)
}

func (v *StaticVerifier) VerifyCustody(_ context.Context, token string) error {
	return verify(v.custodyToken, token)
}

func verify(expected, got string) error {
	if expected == "" || got == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
