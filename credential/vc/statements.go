package vc

import (
	"crypto/sha256"
	"fmt"

	"github.com/multiformats/go-multibase"

	"github.com/pilacorp/go-credential-engine/credential/common/canonical"
)

// Statements canonicalizes the credential (without its proof) into the
// ordered canonical statement set. Statements keep their canonical blank node
// labels; proofs and digests are computed over this raw form, and the blank
// node transform is applied only when a disclosed subset is rebuilt into a
// derived credential. Re-canonicalizing an unmodified credential yields
// identical statements at identical positions.
func (c *Credential) Statements(opts ...canonical.Opt) ([]canonical.Statement, error) {
	unsigned, err := c.UnsignedDoc().RoundTrip()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", canonical.ErrCanonicalization, err)
	}

	canonicalDoc, err := canonical.Default().GetCanonicalDocument(unsigned, opts...)
	if err != nil {
		return nil, err
	}

	return canonical.SplitStatements(canonicalDoc), nil
}

// statementDigests returns the per-statement SHA-256 digests in position order.
func statementDigests(statements []canonical.Statement) [][]byte {
	digests := make([][]byte, len(statements))
	for i, s := range statements {
		digests[i] = s.Digest()
	}
	return digests
}

// digestListHash hashes the concatenation of per-statement digests. The
// embedded proof signature covers this value, so a derived credential can be
// checked statement by statement against the recorded digest list.
func digestListHash(digests [][]byte) []byte {
	h := sha256.New()
	for _, d := range digests {
		h.Write(d)
	}
	return h.Sum(nil)
}

// encodeDigests encodes per-statement digests with multibase base58btc for
// embedding in a derived proof.
func encodeDigests(digests [][]byte) ([]string, error) {
	encoded := make([]string, len(digests))
	for i, d := range digests {
		e, err := multibase.Encode(multibase.Base58BTC, d)
		if err != nil {
			return nil, fmt.Errorf("failed to encode statement digest: %w", err)
		}
		encoded[i] = e
	}
	return encoded, nil
}

// decodeDigests decodes multibase-encoded statement digests.
func decodeDigests(encoded []string) ([][]byte, error) {
	digests := make([][]byte, len(encoded))
	for i, e := range encoded {
		_, d, err := multibase.Decode(e)
		if err != nil {
			return nil, fmt.Errorf("failed to decode statement digest at index %d: %w", i, err)
		}
		digests[i] = d
	}
	return digests, nil
}
