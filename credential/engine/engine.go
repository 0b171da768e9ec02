// Package engine orchestrates the credential proof lifecycle. An Engine
// exposes the four operations (Issue, Verify, Derive, Query) over the two
// proof formats, dispatching on the requested format before any network or
// cryptographic work begins. One Engine may serve concurrent invocations;
// each invocation owns its credential, statement set, and result.
package engine

import (
	"github.com/piprate/json-gold/ld"
	"github.com/sirupsen/logrus"

	"github.com/pilacorp/go-credential-engine/credential/common/canonical"
	credentialstatus "github.com/pilacorp/go-credential-engine/credential/common/credential-status"
	"github.com/pilacorp/go-credential-engine/credential/common/keys"
	"github.com/pilacorp/go-credential-engine/credential/common/ldcontext"
	verificationmethod "github.com/pilacorp/go-credential-engine/credential/common/verification-method"
	"github.com/pilacorp/go-credential-engine/credential/vc"
)

// ProofFormat selects the proof encoding for one operation.
type ProofFormat = vc.ProofFormat

const (
	// ProofFormatJWT is the compact signed-token encoding.
	ProofFormatJWT = vc.ProofFormatJWT
	// ProofFormatLDP is the embedded Data Integrity proof encoding.
	ProofFormatLDP = vc.ProofFormatLDP
)

// ProofOptions configures proof generation and verification.
type ProofOptions = vc.ProofOptions

// Engine is the lifecycle orchestrator. Construct it with New; the zero
// value is not usable.
type Engine struct {
	keys     keys.Provider
	resolver vc.PublicKeyResolver
	loader   ld.DocumentLoader
	status   *credentialstatus.Client
	log      *logrus.Entry

	compact       *vc.CompactTokenStrategy
	embedded      *vc.EmbeddedProofStrategy
	canonOpts     []canonical.Opt
	extraContexts []string
}

// Opt configures an Engine.
type Opt func(*Engine)

// WithKeyProvider replaces the default key provider.
func WithKeyProvider(p keys.Provider) Opt {
	return func(e *Engine) { e.keys = p }
}

// WithResolver replaces the verification method resolver.
func WithResolver(r vc.PublicKeyResolver) Opt {
	return func(e *Engine) { e.resolver = r }
}

// WithDocumentLoader replaces the JSON-LD document loader used for
// canonicalization.
func WithDocumentLoader(l ld.DocumentLoader) Opt {
	return func(e *Engine) { e.loader = l }
}

// WithStatusClient replaces the status list client. A nil client disables
// revocation checks.
func WithStatusClient(c *credentialstatus.Client) Opt {
	return func(e *Engine) { e.status = c }
}

// WithLogger replaces the engine's logger.
func WithLogger(l *logrus.Entry) Opt {
	return func(e *Engine) { e.log = l }
}

// WithExternalContexts appends extra JSON-LD contexts to every
// canonicalization the engine performs, for deployments whose credentials
// rely on terms outside their declared contexts.
func WithExternalContexts(contexts ...string) Opt {
	return func(e *Engine) { e.extraContexts = contexts }
}

// New builds an Engine with the given resolver base URL and options.
func New(resolverBaseURL string, opts ...Opt) *Engine {
	e := &Engine{
		keys:     keys.NewDefaultProvider(),
		resolver: verificationmethod.NewResolver(resolverBaseURL),
		loader:   ldcontext.NewLoader(ldcontext.WithRemoteFetch()),
		status:   credentialstatus.NewClient(),
		log:      logrus.WithField("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.canonOpts = []canonical.Opt{canonical.WithDocumentLoader(e.loader)}
	if len(e.extraContexts) > 0 {
		e.canonOpts = append(e.canonOpts, canonical.WithExternalContext(e.extraContexts...))
	}

	e.compact = vc.NewCompactTokenStrategy(e.resolver)
	e.embedded = vc.NewEmbeddedProofStrategy(e.resolver, e.status, e.canonOpts...)

	return e
}
