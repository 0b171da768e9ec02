package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
)

// ECDSASign signs a 32-byte digest using ECDSA over secp256k1, producing a
// 65-byte [r, s, v] signature.
func ECDSASign(digest []byte, hexPrivateKey string) ([]byte, error) {
	privKey, err := crypto.HexToECDSA(strings.TrimPrefix(hexPrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("ecdsa: invalid private key: %w", err)
	}

	signature, err := crypto.Sign(digest, privKey)
	if err != nil {
		return nil, fmt.Errorf("ecdsa: sign error: %w", err)
	}

	if len(signature) != 65 {
		return nil, fmt.Errorf("ecdsa: invalid signature length, expected 65 bytes")
	}

	return signature, nil
}

// ECDSAVerify verifies a hex-encoded secp256k1 signature over a 32-byte digest
// against a hex-encoded public key. The signature may be 64 bytes (r,s) or
// 65 bytes (r,s,v).
func ECDSAVerify(publicKeyHex, signatureHex string, digest []byte) (bool, error) {
	pubKey, err := ParsePublicKeyHex(publicKeyHex)
	if err != nil {
		return false, err
	}

	sigBytes, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false, fmt.Errorf("failed to decode signature: %w", err)
	}

	var rsBytes []byte
	switch len(sigBytes) {
	case 65:
		rsBytes = sigBytes[:64]
	case 64:
		rsBytes = sigBytes
	default:
		return false, fmt.Errorf("invalid signature length: got %d, want 64 or 65 bytes", len(sigBytes))
	}

	r := new(big.Int).SetBytes(rsBytes[:32])
	s := new(big.Int).SetBytes(rsBytes[32:])

	return ecdsa.Verify(pubKey, digest, r, s), nil
}

// ParsePublicKeyHex parses a hex-encoded secp256k1 public key, accepting both
// compressed (33-byte) and uncompressed (65-byte) encodings.
func ParsePublicKeyHex(publicKeyHex string) (*ecdsa.PublicKey, error) {
	publicKeyHex = strings.TrimPrefix(publicKeyHex, "0x")

	pubKeyBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}

	if len(pubKeyBytes) == 33 && (pubKeyBytes[0] == 0x02 || pubKeyBytes[0] == 0x03) {
		pubKeyParsed, err := btcec.ParsePubKey(pubKeyBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse compressed public key: %w", err)
		}
		pubKeyBytes = pubKeyParsed.SerializeUncompressed()
	}

	pubKey, err := crypto.UnmarshalPubkey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return pubKey, nil
}

// PublicKeyHex returns the uncompressed hex encoding of the public key
// matching the given hex private key.
func PublicKeyHex(hexPrivateKey string) (string, error) {
	privKey, err := crypto.HexToECDSA(strings.TrimPrefix(hexPrivateKey, "0x"))
	if err != nil {
		return "", fmt.Errorf("ecdsa: invalid private key: %w", err)
	}

	return hex.EncodeToString(crypto.FromECDSAPub(&privKey.PublicKey)), nil
}

// VerifyKeyPairFromHex reports whether the hex private key and hex public key
// belong to the same secp256k1 key pair.
func VerifyKeyPairFromHex(privateKeyHex, publicKeyHex string) (bool, error) {
	privKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return false, fmt.Errorf("failed to convert private key hex: %w", err)
	}

	pubKey, err := ParsePublicKeyHex(publicKeyHex)
	if err != nil {
		return false, err
	}

	derived := &privKey.PublicKey

	return derived.X.Cmp(pubKey.X) == 0 && derived.Y.Cmp(pubKey.Y) == 0, nil
}
