package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs compact tokens with an inline hex-encoded secp256k1 key.
type Signer struct {
	privKeyHex string
	keyID      string
}

// NewSigner creates a new compact token signer. keyID is placed in the token
// header as kid and should be a resolvable verification method URI.
func NewSigner(privKeyHex, keyID string) *Signer {
	return &Signer{
		privKeyHex: privKeyHex,
		keyID:      keyID,
	}
}

// SignClaims builds and signs a compact token over the given claim set.
func (s *Signer) SignClaims(claims map[string]interface{}) (string, error) {
	token := jwt.NewWithClaims(ES256K, jwt.MapClaims(claims))
	token.Header["typ"] = "JWT"
	token.Header["kid"] = s.keyID

	signedString, err := token.SignedString(s.privKeyHex)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedString, nil
}

// KeyID returns the key id placed in token headers.
func (s *Signer) KeyID() string {
	return s.keyID
}
