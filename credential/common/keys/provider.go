// Package keys resolves signing key material for credential proofs. Keys are
// delivered either inline (hex-encoded secp256k1 private keys, possibly read
// from a file) or through a signing agent reachable over a unix socket. Agent
// keys are opaque: the engine sends digests and receives signatures, never
// raw key bytes.
package keys

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/pilacorp/go-credential-engine/credential/common/crypto"
)

// ErrNoKey is returned when a selector names no key material at all.
var ErrNoKey = errors.New("no key material supplied")

// ErrKeyResolution is returned when the named key material cannot be resolved.
var ErrKeyResolution = errors.New("key resolution failed")

// Selector names the key material to use for one operation.
type Selector struct {
	// InlineHex is a hex-encoded secp256k1 private key.
	InlineHex string
	// Path is a file holding a hex-encoded secp256k1 private key.
	Path string
	// AgentSocket is the unix socket path of a signing agent.
	AgentSocket string
	// AgentKeyID names the key held by the agent.
	AgentKeyID string
}

// Empty reports whether the selector names no key material.
func (s Selector) Empty() bool {
	return s.InlineHex == "" && s.Path == "" && s.AgentSocket == ""
}

// Provider resolves selectors into key material.
type Provider interface {
	Get(ctx context.Context, sel Selector) (*Key, error)
}

// Key is resolved key material: either an inline private key or a handle to
// an agent-held key.
type Key struct {
	hex        string
	agent      *AgentClient
	agentKeyID string
}

// AgentBacked reports whether the key lives in an external signing agent.
func (k *Key) AgentBacked() bool {
	return k.agent != nil
}

// Hex returns the inline private key. It fails for agent-backed keys, whose
// raw bytes are never available.
func (k *Key) Hex() (string, error) {
	if k.AgentBacked() {
		return "", errors.New("agent-backed key has no inline material")
	}
	return k.hex, nil
}

// Sign signs a 32-byte digest with the key.
func (k *Key) Sign(ctx context.Context, digest []byte) ([]byte, error) {
	if k.AgentBacked() {
		return k.agent.Sign(ctx, k.agentKeyID, digest)
	}
	return crypto.ECDSASign(digest, k.hex)
}

// PublicKeyHex returns the uncompressed hex encoding of the key's public key.
func (k *Key) PublicKeyHex(ctx context.Context) (string, error) {
	if k.AgentBacked() {
		return k.agent.PublicKey(ctx, k.agentKeyID)
	}
	return crypto.PublicKeyHex(k.hex)
}

// NewDefaultProvider returns a provider resolving inline, file-based, and
// agent-backed selectors.
func NewDefaultProvider() Provider {
	return &defaultProvider{}
}

type defaultProvider struct{}

func (p *defaultProvider) Get(ctx context.Context, sel Selector) (*Key, error) {
	switch {
	case sel.AgentSocket != "":
		return &Key{
			agent:      NewAgentClient(sel.AgentSocket),
			agentKeyID: sel.AgentKeyID,
		}, nil
	case sel.InlineHex != "":
		return newInlineKey(sel.InlineHex)
	case sel.Path != "":
		raw, err := os.ReadFile(sel.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: read key file: %v", ErrKeyResolution, err)
		}
		return newInlineKey(strings.TrimSpace(string(raw)))
	default:
		return nil, ErrNoKey
	}
}

// newInlineKey validates the hex key as a usable secp256k1 scalar.
func newInlineKey(keyHex string) (*Key, error) {
	keyHex = strings.TrimPrefix(keyHex, "0x")

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: key is not valid hex: %v", ErrKeyResolution, err)
	}
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("%w: private key must be 32 bytes, got %d", ErrKeyResolution, len(keyBytes))
	}

	priv := secp256k1.PrivKeyFromBytes(keyBytes)
	if priv.Key.IsZero() {
		return nil, fmt.Errorf("%w: private key is zero", ErrKeyResolution)
	}

	return &Key{hex: keyHex}, nil
}
