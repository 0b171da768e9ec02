package jwt

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
)

// SigningMethodES256K implements ES256K (ECDSA over secp256k1) signing for
// compact tokens.
type SigningMethodES256K struct{}

// ES256K is the ES256K signing method instance.
var ES256K = &SigningMethodES256K{}

func init() {
	jwt.RegisterSigningMethod(ES256K.Alg(), func() jwt.SigningMethod {
		return ES256K
	})
}

// Alg returns the algorithm name.
func (m *SigningMethodES256K) Alg() string {
	return "ES256K"
}

// Sign signs the signing string with a hex-encoded secp256k1 private key.
func (m *SigningMethodES256K) Sign(signingString string, key interface{}) ([]byte, error) {
	privKeyHex, ok := key.(string)
	if !ok {
		return nil, fmt.Errorf("invalid key type: expected hex string, got %T", key)
	}

	privKey, err := crypto.HexToECDSA(strings.TrimPrefix(privKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	hash := sha256.Sum256([]byte(signingString))
	sig, err := crypto.Sign(hash[:], privKey)
	if err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}

	// R and S only, the recovery id is not part of the token signature.
	return sig[:64], nil
}

// Verify verifies a 64-byte (r, s) signature against an ECDSA public key.
func (m *SigningMethodES256K) Verify(signingString string, signature []byte, key interface{}) error {
	publicKey, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("invalid key type: expected *ecdsa.PublicKey, got %T", key)
	}

	if len(signature) != 64 {
		return fmt.Errorf("invalid signature length: got %d, want 64", len(signature))
	}

	hash := sha256.Sum256([]byte(signingString))
	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])

	if !ecdsa.Verify(publicKey, hash[:], r, s) {
		return fmt.Errorf("signature verification failed")
	}

	return nil
}

// hexToECDSAPublicKey converts a hex string to an ECDSA public key, accepting
// compressed and uncompressed encodings.
func hexToECDSAPublicKey(publicKeyHex string) (*ecdsa.PublicKey, error) {
	publicKeyHex = strings.TrimPrefix(publicKeyHex, "0x")

	publicKeyBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex: %w", err)
	}

	if len(publicKeyBytes) == 33 && (publicKeyBytes[0] == 0x02 || publicKeyBytes[0] == 0x03) {
		return crypto.DecompressPubkey(publicKeyBytes)
	}

	if len(publicKeyBytes) == 65 && publicKeyBytes[0] == 0x04 {
		return crypto.UnmarshalPubkey(publicKeyBytes)
	}

	return nil, fmt.Errorf("unsupported public key format")
}
