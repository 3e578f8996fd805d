package pkce

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	errUtils "github.com/serverless/sfauth/errors"
)

const (
	dpopType       = "dpop+jwt"
	pemBlockType   = "EC PRIVATE KEY"
	coordinateSize = 32
)

// JWK is the public part of a P-256 key in JSON Web Key form.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

// NewDPoPKey generates a fresh P-256 key for one login attempt.
func NewDPoPKey() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrDPoPKeyGenerate, err)
	}
	return key, nil
}

// EncodePrivateKeyPEM exports the key as a SEC1 "EC PRIVATE KEY" PEM block.
func EncodePrivateKeyPEM(key *ecdsa.PrivateKey) (string, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUtils.ErrDPoPKeyGenerate, err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: pemBlockType, Bytes: der})), nil
}

// PublicJWK returns the public key as a JWK with unpadded base64url coordinates.
func PublicJWK(key *ecdsa.PrivateKey) (JWK, error) {
	pub, err := key.PublicKey.ECDH()
	if err != nil {
		return JWK{}, fmt.Errorf("%w: %w", errUtils.ErrDPoPSign, err)
	}
	// Uncompressed point: 0x04 || X || Y.
	raw := pub.Bytes()
	if len(raw) != 1+2*coordinateSize {
		return JWK{}, fmt.Errorf("%w: unexpected public key length %d", errUtils.ErrDPoPSign, len(raw))
	}

	return JWK{
		Kty: "EC",
		Crv: "P-256",
		X:   base64.RawURLEncoding.EncodeToString(raw[1 : 1+coordinateSize]),
		Y:   base64.RawURLEncoding.EncodeToString(raw[1+coordinateSize:]),
	}, nil
}

// ProofJWT signs a DPoP proof binding the request method and URL to key.
func ProofJWT(key *ecdsa.PrivateKey, method, url string) (string, error) {
	jwk, err := PublicJWK(key)
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"htm": method,
		"htu": url,
		"iat": time.Now().Unix(),
		"jti": uuid.NewString(),
	})
	token.Header["typ"] = dpopType
	token.Header["jwk"] = map[string]string{
		"kty": jwk.Kty,
		"crv": jwk.Crv,
		"x":   jwk.X,
		"y":   jwk.Y,
	}

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUtils.ErrDPoPSign, err)
	}
	return signed, nil
}
