package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single verification failure surfaced to callers.
// Malformed, tampered, expired and wrong-issuer tokens are deliberately
// indistinguishable from the outside.
var ErrInvalidToken = errors.New("jwtx: invalid token")

// Signer signs access-token claims.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier validates a compact JWT and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// EdDSAKeyPair signs and verifies with a single Ed25519 key. Signature
// verification is purely local; no storage lookup is involved.
type EdDSAKeyPair struct {
	kid    string
	priv   ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
}

// NewEdDSAKeyPair loads a PKCS8 PEM Ed25519 private key. Tokens signed by
// the pair carry kid in the header and issuer in the claims; Verify enforces
// both the signature and the issuer.
func NewEdDSAKeyPair(kid string, pemKey []byte, issuer string) (*EdDSAKeyPair, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, errors.New("jwtx: expected PKCS8 PRIVATE KEY PEM")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}

	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an Ed25519 private key")
	}

	return &EdDSAKeyPair{
		kid:    kid,
		priv:   priv,
		pub:    priv.Public().(ed25519.PublicKey),
		issuer: issuer,
	}, nil
}

func (k *EdDSAKeyPair) KID() string { return k.kid }

func (k *EdDSAKeyPair) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = k.kid
	return t.SignedString(k.priv)
}

func (k *EdDSAKeyPair) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(k.issuer),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if kid, _ := t.Header["kid"].(string); kid != k.kid {
			return nil, ErrInvalidToken
		}
		return k.pub, nil
	})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return *claims, nil
}
