package engine

import (
	"context"
	"fmt"

	"github.com/pilacorp/go-credential-engine/credential/common/result"
	"github.com/pilacorp/go-credential-engine/credential/vc"
)

// Verify checks an issued artifact under the requested proof format and
// returns the aggregated verification result. Verification negatives land in
// the result; a returned error is an input or configuration fault that
// prevented verification from running at all.
func (e *Engine) Verify(ctx context.Context, artifact []byte,
	opts *vc.ProofOptions) (*result.VerificationResult, error) {
	if opts == nil {
		opts = &vc.ProofOptions{}
	}
	if err := checkFormat(opts.ProofFormat); err != nil {
		return nil, err
	}

	e.log.WithField("format", opts.ProofFormat).Debug("verifying artifact")

	switch opts.ProofFormat {
	case vc.ProofFormatJWT:
		return e.compact.Verify(ctx, string(artifact), opts), nil
	case vc.ProofFormatLDP:
		cred, err := vc.ParseCredential(artifact)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
		}
		return e.embedded.Verify(ctx, cred, opts)
	default:
		return nil, unsupportedFormat(opts.ProofFormat)
	}
}
