package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-credential-engine/credential/common/crypto"
	"github.com/pilacorp/go-credential-engine/credential/common/ldcontext"
	"github.com/pilacorp/go-credential-engine/credential/vc"
)

const (
	testPrivKeyHex      = "c87509a1c067bbde78beb793e6fa76530b6382a4c0241e5e4a9ec0a0f44dc0d3"
	testContextURL      = "https://example.org/credentials/test/v1"
	extraTestContextURL = "https://example.org/credentials/honors/v1"
)

type staticResolver struct {
	publicKeyHex string
}

func (r *staticResolver) ResolvePublicKey(_ context.Context, _ string) (string, error) {
	return r.publicKeyHex, nil
}

func testEngine(t *testing.T, opts ...Opt) *Engine {
	t.Helper()

	publicKeyHex, err := crypto.PublicKeyHex(testPrivKeyHex)
	require.NoError(t, err)

	loader := ldcontext.NewLoader(ldcontext.WithStaticDocuments(map[string]interface{}{
		testContextURL: map[string]interface{}{
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
		},
		extraTestContextURL: map[string]interface{}{
			"@context": map[string]interface{}{
				"honors": "http://example.org/vocab#honors",
			},
		},
	}))

	return New("http://resolver.invalid",
		append([]Opt{
			WithResolver(&staticResolver{publicKeyHex: publicKeyHex}),
			WithDocumentLoader(loader),
			WithStatusClient(nil),
		}, opts...)...,
	)
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

func inlineKey() KeyArg {
	return KeyArg{InlineHex: testPrivKeyHex}
}

func TestIssueVerifyEmbedded(t *testing.T) {
	e := testEngine(t)

	artifact, err := e.Issue(context.Background(), testCredentialJSON(), inlineKey(),
		&vc.ProofOptions{ProofFormat: vc.ProofFormatLDP})
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(artifact, &doc))
	require.Contains(t, doc, "proof")

	res, err := e.Verify(context.Background(), artifact, &vc.ProofOptions{ProofFormat: vc.ProofFormatLDP})
	require.NoError(t, err)
	assert.True(t, res.Passed(), "errors: %v", res.Errors)
	assert.Equal(t, 0, res.ExitCode())
}

func TestIssueVerifyCompact(t *testing.T) {
	e := testEngine(t)

	artifact, err := e.Issue(context.Background(), testCredentialJSON(), inlineKey(),
		&vc.ProofOptions{ProofFormat: vc.ProofFormatJWT})
	require.NoError(t, err)

	res, err := e.Verify(context.Background(), artifact, &vc.ProofOptions{ProofFormat: vc.ProofFormatJWT})
	require.NoError(t, err)
	assert.True(t, res.Passed(), "errors: %v", res.Errors)
}

func TestUnsupportedProofFormatIsFatal(t *testing.T) {
	e := testEngine(t)

	_, err := e.Issue(context.Background(), testCredentialJSON(), inlineKey(),
		&vc.ProofOptions{ProofFormat: "xml"})
	assert.ErrorIs(t, err, ErrUnsupportedProofFormat)

	_, err = e.Issue(context.Background(), testCredentialJSON(), inlineKey(), nil)
	assert.ErrorIs(t, err, ErrUnsupportedProofFormat, "missing format is not defaulted")

	_, err = e.Verify(context.Background(), []byte("{}"), &vc.ProofOptions{ProofFormat: "cbor"})
	assert.ErrorIs(t, err, ErrUnsupportedProofFormat)
}

func TestIssueCompactWithAgentKeyFailsFast(t *testing.T) {
	e := testEngine(t)

	_, err := e.Issue(context.Background(), testCredentialJSON(),
		KeyArg{AgentSocket: "/tmp/agent.sock", AgentKeyID: "key-1"},
		&vc.ProofOptions{ProofFormat: vc.ProofFormatJWT})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestIssueRejectsMalformedCredential(t *testing.T) {
	e := testEngine(t)

	_, err := e.Issue(context.Background(), []byte(`{"type": ["VerifiableCredential"]}`),
		inlineKey(), &vc.ProofOptions{ProofFormat: vc.ProofFormatLDP})
	assert.ErrorIs(t, err, ErrMalformedCredential)

	_, err = e.Issue(context.Background(), []byte("{broken"), inlineKey(),
		&vc.ProofOptions{ProofFormat: vc.ProofFormatLDP})
	assert.ErrorIs(t, err, ErrMalformedCredential)
}

func TestIssueRejectsMissingKey(t *testing.T) {
	e := testEngine(t)

	_, err := e.Issue(context.Background(), testCredentialJSON(), KeyArg{},
		&vc.ProofOptions{ProofFormat: vc.ProofFormatLDP})
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestDeriveAndVerifyThroughEngine(t *testing.T) {
	e := testEngine(t)

	artifact, err := e.Issue(context.Background(), testCredentialJSON(), inlineKey(),
		&vc.ProofOptions{ProofFormat: vc.ProofFormatLDP})
	require.NoError(t, err)

	derived, err := e.Derive(context.Background(), artifact, "nonce-1", []string{"credentialSubject.name"})
	require.NoError(t, err)
	assert.Contains(t, string(derived), "Alice")
	assert.NotContains(t, string(derived), "Bachelor")

	res, err := e.Verify(context.Background(), derived,
		&vc.ProofOptions{ProofFormat: vc.ProofFormatLDP, Nonce: "nonce-1"})
	require.NoError(t, err)
	assert.True(t, res.Passed(), "errors: %v", res.Errors)
}

func TestDeriveAndVerifyCredentialWithoutID(t *testing.T) {
	e := testEngine(t)

	credential := []byte(`{
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

	artifact, err := e.Issue(context.Background(), credential, inlineKey(),
		&vc.ProofOptions{ProofFormat: vc.ProofFormatLDP})
	require.NoError(t, err)

	positions, err := e.Query(context.Background(), credential, []string{"issuer", "credentialSubject.name"})
	require.NoError(t, err)
	assert.Len(t, positions, 2)

	derived, err := e.Derive(context.Background(), artifact, "nonce-1",
		[]string{"issuer", "credentialSubject.name"})
	require.NoError(t, err)
	assert.Contains(t, string(derived), "Alice")
	assert.NotContains(t, string(derived), "Bachelor")

	res, err := e.Verify(context.Background(), derived,
		&vc.ProofOptions{ProofFormat: vc.ProofFormatLDP, Nonce: "nonce-1"})
	require.NoError(t, err)
	assert.True(t, res.Passed(), "errors: %v", res.Errors)
}

func TestDeriveWithUnmatchedSelectorsOnly(t *testing.T) {
	e := testEngine(t)

	artifact, err := e.Issue(context.Background(), testCredentialJSON(), inlineKey(),
		&vc.ProofOptions{ProofFormat: vc.ProofFormatLDP})
	require.NoError(t, err)

	_, err = e.Derive(context.Background(), artifact, "nonce-1", []string{"missingField"})
	assert.ErrorIs(t, err, ErrNoDisclosure)
}

func TestIssueWithOptions(t *testing.T) {
	e := testEngine(t)

	artifact, err := e.IssueWithOptions(context.Background(), testCredentialJSON(), inlineKey(),
		map[string]interface{}{
			"proofFormat": "ldp",
			"challenge":   "challenge-1",
		})
	require.NoError(t, err)

	res, err := e.Verify(context.Background(), artifact,
		&vc.ProofOptions{ProofFormat: vc.ProofFormatLDP, Challenge: "challenge-1"})
	require.NoError(t, err)
	assert.True(t, res.Passed(), "errors: %v", res.Errors)

	_, err = e.IssueWithOptions(context.Background(), testCredentialJSON(), inlineKey(),
		map[string]interface{}{"proofFormat": "ldp", "created": "not-a-timestamp"})
	assert.Error(t, err)
}

func TestIssueVerifyWithExternalContext(t *testing.T) {
	e := testEngine(t, WithExternalContexts(extraTestContextURL))

	credential := []byte(`{
		"@context": "` + testContextURL + `",
		"id": "urn:uuid:5c0f9e12-46a7-4bcb-8f3e-7a2d9a1f0002",
		"type": ["VerifiableCredential"],
		"issuer": "did:example:issuer",
		"validFrom": "2026-01-01T00:00:00Z",
		"credentialSubject": {
			"id": "did:example:subject",
			"name": "Alice",
			"honors": "cum laude"
		}
	}`)

	artifact, err := e.Issue(context.Background(), credential, inlineKey(),
		&vc.ProofOptions{ProofFormat: vc.ProofFormatLDP})
	require.NoError(t, err)

	res, err := e.Verify(context.Background(), artifact, &vc.ProofOptions{ProofFormat: vc.ProofFormatLDP})
	require.NoError(t, err)
	assert.True(t, res.Passed(), "errors: %v", res.Errors)

	positions, err := e.Query(context.Background(), credential, []string{"honors"})
	require.NoError(t, err)
	assert.Len(t, positions, 1, "terms from the external context resolve to statements")
}

func TestDeriveWithoutSelectors(t *testing.T) {
	e := testEngine(t)

	artifact, err := e.Issue(context.Background(), testCredentialJSON(), inlineKey(),
		&vc.ProofOptions{ProofFormat: vc.ProofFormatLDP})
	require.NoError(t, err)

	_, err = e.Derive(context.Background(), artifact, "nonce-1", nil)
	assert.ErrorIs(t, err, ErrNoSelectors)
}

func TestQuery(t *testing.T) {
	e := testEngine(t)

	positions, err := e.Query(context.Background(), testCredentialJSON(), []string{"name", "degree"})
	require.NoError(t, err)
	assert.Len(t, positions, 2)

	_, err = e.Query(context.Background(), testCredentialJSON(), nil)
	assert.ErrorIs(t, err, ErrNoSelectors)
}

func TestQueryIsIdempotent(t *testing.T) {
	e := testEngine(t)

	first, err := e.Query(context.Background(), testCredentialJSON(), []string{"name"})
	require.NoError(t, err)

	second, err := e.Query(context.Background(), testCredentialJSON(), []string{"name"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFormatPositions(t *testing.T) {
	assert.Equal(t, "0 2 5", FormatPositions([]int{0, 2, 5}))
	assert.Equal(t, "", FormatPositions(nil))
}
