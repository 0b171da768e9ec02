package keys

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-credential-engine/credential/common/crypto"
)

const testPrivKeyHex = "c87509a1c067bbde78beb793e6fa76530b6382a4c0241e5e4a9ec0a0f44dc0d3"

func TestProviderInlineKey(t *testing.T) {
	provider := NewDefaultProvider()

	key, err := provider.Get(context.Background(), Selector{InlineHex: testPrivKeyHex})
	require.NoError(t, err)

	assert.False(t, key.AgentBacked())

	gotHex, err := key.Hex()
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, gotHex)
}

func TestProviderInlineKeyStripsHexPrefix(t *testing.T) {
	key, err := NewDefaultProvider().Get(context.Background(), Selector{InlineHex: "0x" + testPrivKeyHex})
	require.NoError(t, err)

	gotHex, err := key.Hex()
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, gotHex)
}

func TestProviderRejectsInvalidInlineKeys(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{
			name: "not hex",
			hex:  "zzzz",
		},
		{
			name: "wrong length",
			hex:  "abcd",
		},
		{
			name: "zero scalar",
			hex:  "0000000000000000000000000000000000000000000000000000000000000000",
		},
	}

	provider := NewDefaultProvider()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.Get(context.Background(), Selector{InlineHex: tt.hex})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrKeyResolution)
		})
	}
}

func TestProviderKeyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.hex")
	require.NoError(t, os.WriteFile(path, []byte(testPrivKeyHex+"\n"), 0o600))

	key, err := NewDefaultProvider().Get(context.Background(), Selector{Path: path})
	require.NoError(t, err)

	gotHex, err := key.Hex()
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, gotHex)
}

func TestProviderKeyFileMissing(t *testing.T) {
	_, err := NewDefaultProvider().Get(context.Background(),
		Selector{Path: filepath.Join(t.TempDir(), "nope.hex")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyResolution)
}

func TestProviderEmptySelector(t *testing.T) {
	_, err := NewDefaultProvider().Get(context.Background(), Selector{})
	assert.ErrorIs(t, err, ErrNoKey)

	assert.True(t, Selector{}.Empty())
	assert.False(t, Selector{InlineHex: "aa"}.Empty())
}

func TestAgentBackedKeyHasNoInlineMaterial(t *testing.T) {
	key, err := NewDefaultProvider().Get(context.Background(),
		Selector{AgentSocket: "/tmp/agent.sock", AgentKeyID: "key-1"})
	require.NoError(t, err)

	assert.True(t, key.AgentBacked())

	_, err = key.Hex()
	assert.Error(t, err)
}

func TestInlineKeySignsVerifiableSignatures(t *testing.T) {
	key, err := NewDefaultProvider().Get(context.Background(), Selector{InlineHex: testPrivKeyHex})
	require.NoError(t, err)

	digest := make([]byte, 32)
	for i := range digest {
		digest[i] = byte(i)
	}

	signature, err := key.Sign(context.Background(), digest)
	require.NoError(t, err)

	publicKeyHex, err := key.PublicKeyHex(context.Background())
	require.NoError(t, err)

	ok, err := crypto.ECDSAVerify(publicKeyHex, hex.EncodeToString(signature), digest)
	require.NoError(t, err)
	assert.True(t, ok)
}
