package engine

import (
	"context"
	"fmt"

	"github.com/pilacorp/go-credential-engine/credential/vc"
)

// Derive builds a derived credential from an embedded-proof credential,
// disclosing only the statements matched by the selectors and binding the
// result to the verifier's nonce. Selectors that match nothing are tolerated;
// an entirely empty selector list is ErrNoSelectors.
func (e *Engine) Derive(ctx context.Context, credentialJSON []byte, nonce string,
	selectors []string) ([]byte, error) {
	cred, err := vc.ParseCredential(credentialJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	derived, resolution, err := e.embedded.Derive(ctx, cred, selectors,
		&vc.ProofOptions{Nonce: nonce})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"disclosed": len(resolution.Positions),
		"unmatched": len(resolution.Unmatched),
	}).Debug("derived credential")

	return derived.ToJSON()
}
