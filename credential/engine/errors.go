package engine

import (
	"errors"
	"fmt"

	"github.com/pilacorp/go-credential-engine/credential/common/canonical"
	"github.com/pilacorp/go-credential-engine/credential/common/keys"
	verificationmethod "github.com/pilacorp/go-credential-engine/credential/common/verification-method"
	"github.com/pilacorp/go-credential-engine/credential/vc"
)

// ErrUnsupportedProofFormat is returned when an operation names a proof
// format outside the closed set. It is raised before any network or
// cryptographic work.
var ErrUnsupportedProofFormat = errors.New("unsupported proof format")

// Re-exported sentinels so callers can match the whole taxonomy against one
// package with errors.Is.
var (
	ErrCanonicalization    = canonical.ErrCanonicalization
	ErrInvalidRDFFound     = canonical.ErrInvalidRDFFound
	ErrMalformedCredential = vc.ErrMalformedCredential
	ErrNotImplemented      = vc.ErrNotImplemented
	ErrNoSelectors         = vc.ErrNoSelectors
	ErrNoDisclosure        = vc.ErrNoDisclosure
	ErrNoKey               = keys.ErrNoKey
	ErrKeyResolution       = keys.ErrKeyResolution
	ErrResolver            = verificationmethod.ErrResolver
)

// unsupportedFormat wraps ErrUnsupportedProofFormat with the offending value.
func unsupportedFormat(format vc.ProofFormat) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedProofFormat, format)
}
