package vc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-credential-engine/credential/common/canonical"
	"github.com/pilacorp/go-credential-engine/credential/common/crypto"
	"github.com/pilacorp/go-credential-engine/credential/common/keys"
	"github.com/pilacorp/go-credential-engine/credential/common/ldcontext"
)

const (
	testPrivKeyHex = "c87509a1c067bbde78beb793e6fa76530b6382a4c0241e5e4a9ec0a0f44dc0d3"
	testContextURL = "https://example.org/credentials/test/v1"
)

// testContext is a self-contained context so tests never touch the network.
func testContext() map[string]interface{} {
	return map[string]interface{}{
		"@context": map[string]interface{}{
			"id":                   "@id",
			"type":                 "@type",
			"VerifiableCredential": "http://example.org/vocab#VerifiableCredential",
			"issuer":               map[string]interface{}{"@id": "http://example.org/vocab#issuer", "@type": "@id"},
			"validFrom":            "http://example.org/vocab#validFrom",
			"credentialSubject":    map[string]interface{}{"@id": "http://example.org/vocab#credentialSubject", "@type": "@id"},
			"name":                 "http://example.org/vocab#name",
			"degree":               "http://example.org/vocab#degree",
		},
	}
}

func testCanonOpts() []canonical.Opt {
	loader := ldcontext.NewLoader(ldcontext.WithStaticDocuments(map[string]interface{}{
		testContextURL: testContext(),
	}))
	return []canonical.Opt{canonical.WithDocumentLoader(loader)}
}

func testCredentialJSON() []byte {
	return []byte(`{
		"@context": "` + testContextURL + `",
		"id": "urn:uuid:5c0f9e12-46a7-4bcb-8f3e-7a2d9a1f0001",
		"type": ["VerifiableCredential"],
		"issuer": "did:example:issuer",
		"validFrom": "2026-01-01T00:00:00Z",
		"credentialSubject": {
			"id": "did:example:subject",
			"name": "Alice",
			"degree": "Bachelor"
		}
	}`)
}

// testCredentialWithoutIDJSON has no top-level id, so its canonical root
// subject is a blank node.
func testCredentialWithoutIDJSON() []byte {
	return []byte(`{
		"@context": "` + testContextURL + `",
		"type": ["VerifiableCredential"],
		"issuer": "did:example:issuer",
		"validFrom": "2026-01-01T00:00:00Z",
		"credentialSubject": {
			"id": "did:example:subject",
			"name": "Alice",
			"degree": "Bachelor"
		}
	}`)
}

func testCredentialWithoutID(t *testing.T) *Credential {
	t.Helper()

	cred, err := ParseCredential(testCredentialWithoutIDJSON())
	require.NoError(t, err)
	return cred
}

func testCredential(t *testing.T) *Credential {
	t.Helper()

	cred, err := ParseCredential(testCredentialJSON())
	require.NoError(t, err)
	return cred
}

func testKey(t *testing.T) *keys.Key {
	t.Helper()

	key, err := keys.NewDefaultProvider().Get(context.Background(),
		keys.Selector{InlineHex: testPrivKeyHex})
	require.NoError(t, err)
	return key
}

// staticResolver resolves every verification method to one fixed public key.
type staticResolver struct {
	publicKeyHex string
	err          error
}

func (r *staticResolver) ResolvePublicKey(_ context.Context, _ string) (string, error) {
	return r.publicKeyHex, r.err
}

func testResolver(t *testing.T) *staticResolver {
	t.Helper()

	publicKeyHex, err := crypto.PublicKeyHex(testPrivKeyHex)
	require.NoError(t, err)
	return &staticResolver{publicKeyHex: publicKeyHex}
}
