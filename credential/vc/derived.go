package vc

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/pilacorp/go-credential-engine/credential/common/canonical"
	"github.com/pilacorp/go-credential-engine/credential/common/dto"
	"github.com/pilacorp/go-credential-engine/credential/common/result"
)

// Derive builds a derived credential disclosing only the statements matched
// by the given selectors. The derived proof carries the issuer's original
// signature together with the full statement digest list and the disclosed
// positions, so a verifier can check the disclosed subset without the hidden
// statements. The source credential is left untouched.
func (s *EmbeddedProofStrategy) Derive(ctx context.Context, cred *Credential,
	selectors []string, opts *ProofOptions) (*Credential, *Resolution, error) {
	if len(selectors) == 0 {
		return nil, nil, ErrNoSelectors
	}

	proof, err := cred.Proof()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: cannot derive from an unsigned credential: %v",
			ErrMalformedCredential, err)
	}
	if len(proof.StatementDigests) > 0 {
		return nil, nil, fmt.Errorf("%w: deriving from an already derived credential",
			ErrNotImplemented)
	}

	statements, err := cred.Statements(s.canonOpts...)
	if err != nil {
		return nil, nil, err
	}

	resolution, err := ResolveSelectors(statements, selectors)
	if err != nil {
		return nil, nil, err
	}

	for _, unmatched := range resolution.Unmatched {
		s.log.WithField("selector", unmatched).Warn("selector matched no statement")
	}
	if len(resolution.Positions) == 0 {
		return nil, nil, ErrNoDisclosure
	}

	encoded, err := encodeDigests(statementDigests(statements))
	if err != nil {
		return nil, nil, err
	}

	// Blank node labels in the disclosed subset are pinned as stable IRIs so
	// that re-canonicalizing the derived credential cannot renumber them.
	disclosed := canonical.ValuesAt(statements, resolution.Positions)
	for i := range disclosed {
		disclosed[i] = canonical.TransformBlankNode(disclosed[i])
	}

	reduced, err := canonical.Default().FromRDF(disclosed, cred.Doc()["@context"], s.canonOpts...)
	if err != nil {
		return nil, nil, err
	}

	derived := NewCredential(reduced)
	derived.AttachProof(&dto.Proof{
		Type:               proof.Type,
		Cryptosuite:        proof.Cryptosuite,
		Created:            proof.Created,
		VerificationMethod: proof.VerificationMethod,
		ProofPurpose:       proof.ProofPurpose,
		ProofValue:         proof.ProofValue,
		StatementDigests:   encoded,
		DisclosedIndexes:   resolution.Positions,
		Nonce:              opts.Nonce,
	})

	return derived, resolution, nil
}

// verifyDerived checks a derived credential: every disclosed statement must
// digest-match the recorded digest list at the disclosed positions, and the
// issuer's signature must cover the hash of the full recorded list. Matching
// is order-independent within the disclosed subset since re-canonicalizing a
// subset may reorder its statements.
func (s *EmbeddedProofStrategy) verifyDerived(ctx context.Context, cred *Credential,
	proof *dto.Proof, opts *ProofOptions, res *result.VerificationResult) {
	recorded, err := decodeDigests(proof.StatementDigests)
	if err != nil {
		res.AddError(err.Error())
		return
	}

	if len(proof.DisclosedIndexes) == 0 {
		res.AddError("derived proof discloses no statements")
		return
	}
	for _, idx := range proof.DisclosedIndexes {
		if idx < 0 || idx >= len(recorded) {
			res.AddError(fmt.Sprintf("disclosed index %d is outside the digest list", idx))
			return
		}
	}

	statements, err := cred.Statements(s.canonOpts...)
	if err != nil {
		res.AddError(fmt.Sprintf("canonicalization failed: %v", err))
		return
	}

	// The disclosed subset carries pinned blank node IRIs; restoring the
	// canonical labels makes each statement digest comparable to the list the
	// issuer signed.
	for i := range statements {
		statements[i].Value = canonical.RestoreBlankNode(statements[i].Value)
	}

	expected := make(map[string]int, len(proof.DisclosedIndexes))
	for _, idx := range proof.DisclosedIndexes {
		expected[hex.EncodeToString(recorded[idx])]++
	}

	if len(statements) != len(proof.DisclosedIndexes) {
		res.AddError(fmt.Sprintf("derived credential has %d statements but %d disclosed positions",
			len(statements), len(proof.DisclosedIndexes)))
		return
	}

	for _, statement := range statements {
		key := hex.EncodeToString(statement.Digest())
		if expected[key] == 0 {
			res.AddError("derived statement does not match any recorded digest at the disclosed positions")
			return
		}
		expected[key]--
	}
	res.AddCheck("disclosed statement digests")

	s.checkSignature(ctx, proof, digestListHash(recorded), res)

	if opts.Nonce != "" {
		if proof.Nonce != opts.Nonce {
			res.AddError("derived proof nonce does not match the expected nonce")
		} else {
			res.AddCheck("nonce")
		}
	}
}
