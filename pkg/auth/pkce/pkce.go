// Package pkce generates PKCE verifier/challenge pairs and DPoP proofs.
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	errUtils "github.com/serverless/sfauth/errors"
)

const (
	// MethodS256 is the only supported challenge method.
	MethodS256 = "S256"

	verifierEntropyBytes = 48
	verifierLength       = 64
)

// Pair is a PKCE code verifier and its derived challenge.
type Pair struct {
	Verifier  string
	Challenge string
	Method    string
}

// Generate returns a fresh verifier (64 base64url characters) and its S256 challenge.
func Generate() (Pair, error) {
	buf := make([]byte, verifierEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return Pair{}, fmt.Errorf("%w: %w", errUtils.ErrPKCEGenerate, err)
	}

	verifier := base64.RawURLEncoding.EncodeToString(buf)
	if len(verifier) > verifierLength {
		verifier = verifier[:verifierLength]
	}

	return Pair{
		Verifier:  verifier,
		Challenge: Challenge(verifier),
		Method:    MethodS256,
	}, nil
}

// Challenge derives the S256 challenge for a verifier.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
