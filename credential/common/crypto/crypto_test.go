package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrivKeyHex = "c87509a1c067bbde78beb793e6fa76530b6382a4c0241e5e4a9ec0a0f44dc0d3"

func TestECDSASignVerifyRoundTrip(t *testing.T) {
	digest := sha256.Sum256([]byte("payload"))

	signature, err := ECDSASign(digest[:], testPrivKeyHex)
	require.NoError(t, err)
	require.Len(t, signature, 65)

	publicKeyHex, err := PublicKeyHex(testPrivKeyHex)
	require.NoError(t, err)

	ok, err := ECDSAVerify(publicKeyHex, hex.EncodeToString(signature), digest[:])
	require.NoError(t, err)
	assert.True(t, ok)

	// A 64-byte (r, s) signature without the recovery id verifies too.
	ok, err = ECDSAVerify(publicKeyHex, hex.EncodeToString(signature[:64]), digest[:])
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestECDSAVerifyRejectsWrongDigest(t *testing.T) {
	digest := sha256.Sum256([]byte("payload"))

	signature, err := ECDSASign(digest[:], testPrivKeyHex)
	require.NoError(t, err)

	publicKeyHex, err := PublicKeyHex(testPrivKeyHex)
	require.NoError(t, err)

	other := sha256.Sum256([]byte("tampered"))

	ok, err := ECDSAVerify(publicKeyHex, hex.EncodeToString(signature), other[:])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestECDSASignRejectsInvalidKey(t *testing.T) {
	digest := sha256.Sum256([]byte("payload"))

	_, err := ECDSASign(digest[:], "not-hex")
	assert.Error(t, err)
}

func TestParsePublicKeyHexCompressed(t *testing.T) {
	uncompressedHex, err := PublicKeyHex(testPrivKeyHex)
	require.NoError(t, err)

	uncompressed, err := ParsePublicKeyHex(uncompressedHex)
	require.NoError(t, err)

	// Rebuild the compressed form and parse it back.
	compressed := make([]byte, 33)
	if uncompressed.Y.Bit(0) == 0 {
		compressed[0] = 0x02
	} else {
		compressed[0] = 0x03
	}
	uncompressed.X.FillBytes(compressed[1:])

	parsed, err := ParsePublicKeyHex(hex.EncodeToString(compressed))
	require.NoError(t, err)
	assert.Equal(t, 0, uncompressed.X.Cmp(parsed.X))
	assert.Equal(t, 0, uncompressed.Y.Cmp(parsed.Y))
}

func TestVerifyKeyPairFromHex(t *testing.T) {
	publicKeyHex, err := PublicKeyHex(testPrivKeyHex)
	require.NoError(t, err)

	ok, err := VerifyKeyPairFromHex(testPrivKeyHex, publicKeyHex)
	require.NoError(t, err)
	assert.True(t, ok)

	otherPriv := "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

	ok, err = VerifyKeyPairFromHex(otherPriv, publicKeyHex)
	require.NoError(t, err)
	assert.False(t, ok)
}
