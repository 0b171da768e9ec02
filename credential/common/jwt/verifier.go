package jwt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// PublicKeyResolver resolves a verification method URI into a hex-encoded
// public key.
type PublicKeyResolver interface {
	ResolvePublicKey(ctx context.Context, verificationMethod string) (string, error)
}

// Verifier verifies compact token signatures against resolver-provided keys.
type Verifier struct {
	resolver PublicKeyResolver
}

// NewVerifier creates a new compact token verifier.
func NewVerifier(resolver PublicKeyResolver) *Verifier {
	return &Verifier{resolver: resolver}
}

// Verify checks the ES256K signature of a compact token. The signing key is
// resolved from the kid header through the DID resolver.
func (v *Verifier) Verify(ctx context.Context, tokenString string) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return fmt.Errorf("invalid compact token format: expected 3 parts, got %d", len(parts))
	}

	header, err := decodeSegment(parts[0])
	if err != nil {
		return fmt.Errorf("invalid header: %w", err)
	}

	kid, ok := header["kid"].(string)
	if !ok || kid == "" {
		return fmt.Errorf("kid not found in header")
	}

	if alg, _ := header["alg"].(string); alg != ES256K.Alg() {
		return fmt.Errorf("unsupported signing algorithm: %q", alg)
	}

	publicKeyHex, err := v.resolver.ResolvePublicKey(ctx, kid)
	if err != nil {
		return fmt.Errorf("failed to resolve public key: %w", err)
	}

	publicKey, err := hexToECDSAPublicKey(publicKeyHex)
	if err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}

	return ES256K.Verify(parts[0]+"."+parts[1], signature, publicKey)
}

// DecodeParts decodes the header and payload of a compact token without
// verifying its signature.
func DecodeParts(tokenString string) (header, payload map[string]interface{}, err error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, nil, fmt.Errorf("invalid compact token format: expected 3 parts, got %d", len(parts))
	}

	header, err = decodeSegment(parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid header: %w", err)
	}

	payload, err = decodeSegment(parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid payload: %w", err)
	}

	return header, payload, nil
}

func decodeSegment(segment string) (map[string]interface{}, error) {
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, err
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
