package engine

import (
	"context"
	"fmt"

	"github.com/pilacorp/go-credential-engine/credential/common/keys"
	"github.com/pilacorp/go-credential-engine/credential/vc"
)

// KeyArg names the signing key for an Issue invocation: an inline hex key, a
// key file path, or an agent socket plus key id.
type KeyArg = keys.Selector

// Issue signs a credential under the requested proof format and returns the
// resulting artifact: the compact token for the jwt format, the signed
// credential JSON for the ldp format. An unknown format is rejected before
// any key resolution or cryptographic work.
func (e *Engine) Issue(ctx context.Context, credentialJSON []byte, key KeyArg,
	opts *vc.ProofOptions) ([]byte, error) {
	if opts == nil {
		opts = &vc.ProofOptions{}
	}
	if err := checkFormat(opts.ProofFormat); err != nil {
		return nil, err
	}

	cred, err := vc.ParseCredential(credentialJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	if err := cred.ValidateUnsigned(); err != nil {
		return nil, err
	}

	k, err := e.keys.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"format": opts.ProofFormat,
		"issuer": cred.Issuer(),
	}).Debug("issuing credential")

	switch opts.ProofFormat {
	case vc.ProofFormatJWT:
		token, err := e.compact.Issue(ctx, cred, k, opts)
		if err != nil {
			return nil, err
		}
		return []byte(token), nil
	case vc.ProofFormatLDP:
		signed, err := e.embedded.Issue(ctx, cred, k, opts)
		if err != nil {
			return nil, err
		}
		return signed.ToJSON()
	default:
		return nil, unsupportedFormat(opts.ProofFormat)
	}
}

// IssueWithOptions is Issue with the proof options supplied as a loose JSON
// map, as delivered by an HTTP request body or command line flags.
func (e *Engine) IssueWithOptions(ctx context.Context, credentialJSON []byte, key KeyArg,
	optionsMap map[string]interface{}) ([]byte, error) {
	opts, err := vc.ProofOptionsFromMap(optionsMap)
	if err != nil {
		return nil, err
	}
	return e.Issue(ctx, credentialJSON, key, opts)
}

// checkFormat rejects formats outside the closed set up front.
func checkFormat(format vc.ProofFormat) error {
	switch format {
	case vc.ProofFormatJWT, vc.ProofFormatLDP:
		return nil
	default:
		return unsupportedFormat(format)
	}
}
