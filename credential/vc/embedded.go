package vc

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/pilacorp/go-credential-engine/credential/common/canonical"
	credentialstatus "github.com/pilacorp/go-credential-engine/credential/common/credential-status"
	"github.com/pilacorp/go-credential-engine/credential/common/crypto"
	"github.com/pilacorp/go-credential-engine/credential/common/dto"
	"github.com/pilacorp/go-credential-engine/credential/common/keys"
	"github.com/pilacorp/go-credential-engine/credential/common/result"
)

const (
	proofTypeDataIntegrity = "DataIntegrityProof"
	cryptosuiteECDSARDFC   = "ecdsa-rdfc-2019"
)

// EmbeddedProofStrategy issues and verifies credentials carrying an embedded
// Data Integrity proof. The proof signature covers the hash of the
// credential's canonical statement digest list, so a derived credential can
// later be checked statement by statement against the same signature.
type EmbeddedProofStrategy struct {
	resolver  PublicKeyResolver
	status    *credentialstatus.Client
	canonOpts []canonical.Opt
	log       *logrus.Entry
}

// NewEmbeddedProofStrategy returns the embedded proof strategy. The canonical
// options are applied to every canonicalization the strategy performs.
// Normalized views are always validated: a proof must never cover a statement
// set containing invalid RDF lines.
func NewEmbeddedProofStrategy(resolver PublicKeyResolver,
	status *credentialstatus.Client, canonOpts ...canonical.Opt) *EmbeddedProofStrategy {
	return &EmbeddedProofStrategy{
		resolver:  resolver,
		status:    status,
		canonOpts: append(canonOpts, canonical.WithValidateRDF()),
		log:       logrus.WithField("component", "vc/embedded"),
	}
}

// Issue canonicalizes the credential, signs the digest list hash of its
// statement set, and attaches the resulting proof. The input credential is
// mutated in place and returned.
func (s *EmbeddedProofStrategy) Issue(ctx context.Context, cred *Credential,
	key *keys.Key, opts *ProofOptions) (*Credential, error) {
	if key == nil {
		return nil, keys.ErrNoKey
	}

	if err := cred.ValidateUnsigned(); err != nil {
		return nil, err
	}

	statements, err := cred.Statements(s.canonOpts...)
	if err != nil {
		return nil, err
	}
	if len(statements) == 0 {
		return nil, fmt.Errorf("%w: credential canonicalizes to an empty statement set",
			ErrMalformedCredential)
	}

	rootDigest := digestListHash(statementDigests(statements))

	signature, err := key.Sign(ctx, rootDigest)
	if err != nil {
		return nil, fmt.Errorf("failed to sign credential digest: %w", err)
	}

	proof := &dto.Proof{
		Type:               proofTypeDataIntegrity,
		Cryptosuite:        cryptosuiteECDSARDFC,
		Created:            opts.createdOrNow(),
		VerificationMethod: opts.verificationMethodOrDefault(cred.Issuer()),
		ProofPurpose:       opts.proofPurposeOrDefault(),
		ProofValue:         hex.EncodeToString(signature),
		Challenge:          opts.Challenge,
		Domain:             opts.Domain,
	}

	cred.AttachProof(proof)
	return cred, nil
}

// Verify checks the credential's embedded proof and aggregates the outcome.
// A structurally malformed credential is a fault and aborts verification
// before the proof is examined; everything past that point is recorded in the
// verification result. Derived credentials, recognized by the digest list in
// their proof, take the selective-disclosure verification path.
func (s *EmbeddedProofStrategy) Verify(ctx context.Context, cred *Credential,
	opts *ProofOptions) (*result.VerificationResult, error) {
	proof, proofErr := cred.Proof()
	derived := proofErr == nil && len(proof.StatementDigests) > 0

	// A derived credential discloses a subset of the original statements, so
	// it is exempt from the full structural check; it still needs a context
	// to canonicalize against.
	if derived {
		if cred.Doc()["@context"] == nil {
			return nil, fmt.Errorf("%w: missing @context", ErrMalformedCredential)
		}
	} else {
		if err := cred.ValidateUnsigned(); err != nil {
			return nil, err
		}
	}

	res := result.New()

	if proofErr != nil {
		res.AddError(fmt.Sprintf("proof check failed: %v", proofErr))
		return res, nil
	}

	if proof.Type != proofTypeDataIntegrity {
		res.AddError(fmt.Sprintf("unsupported proof type %q", proof.Type))
		return res, nil
	}
	if proof.Cryptosuite != cryptosuiteECDSARDFC {
		res.AddError(fmt.Sprintf("unsupported cryptosuite %q", proof.Cryptosuite))
		return res, nil
	}
	res.AddCheck("proof metadata")

	if len(proof.StatementDigests) > 0 {
		s.verifyDerived(ctx, cred, proof, opts, res)
	} else {
		s.verifyFull(ctx, cred, proof, res)
	}

	s.checkBinding(proof, opts, res)
	s.checkStatus(ctx, cred, res)

	return res, nil
}

// verifyFull recomputes the canonical statement set of an undiminished
// credential and checks the proof signature over its digest list hash.
func (s *EmbeddedProofStrategy) verifyFull(ctx context.Context, cred *Credential,
	proof *dto.Proof, res *result.VerificationResult) {
	statements, err := cred.Statements(s.canonOpts...)
	if err != nil {
		res.AddError(fmt.Sprintf("canonicalization failed: %v", err))
		return
	}

	rootDigest := digestListHash(statementDigests(statements))
	s.checkSignature(ctx, proof, rootDigest, res)
}

// checkSignature resolves the proof's verification method and checks the
// proof value against the given digest.
func (s *EmbeddedProofStrategy) checkSignature(ctx context.Context,
	proof *dto.Proof, digest []byte, res *result.VerificationResult) {
	publicKeyHex, err := s.resolver.ResolvePublicKey(ctx, proof.VerificationMethod)
	if err != nil {
		res.AddError(fmt.Sprintf("failed to resolve verification method %q: %v",
			proof.VerificationMethod, err))
		return
	}

	ok, err := crypto.ECDSAVerify(publicKeyHex, proof.ProofValue, digest)
	if err != nil {
		res.AddError(fmt.Sprintf("signature check failed: %v", err))
		return
	}
	if !ok {
		res.AddError("proof signature does not match the credential")
		return
	}
	res.AddCheck("ecdsa-rdfc-2019 signature")
}

// checkBinding compares the proof's challenge and domain against the
// verifier's expectations.
func (s *EmbeddedProofStrategy) checkBinding(proof *dto.Proof,
	opts *ProofOptions, res *result.VerificationResult) {
	if opts.Challenge != "" {
		if proof.Challenge != opts.Challenge {
			res.AddError("proof challenge does not match the expected challenge")
		} else {
			res.AddCheck("challenge")
		}
	}
	if opts.Domain != "" {
		if proof.Domain != opts.Domain {
			res.AddError("proof domain does not match the expected domain")
		} else {
			res.AddCheck("domain")
		}
	}
}

// checkStatus checks the credential's revocation status when it declares a
// credentialStatus entry. An unreachable status list is reported as a
// warning, a revoked credential as an error.
func (s *EmbeddedProofStrategy) checkStatus(ctx context.Context,
	cred *Credential, res *result.VerificationResult) {
	if s.status == nil || cred.Doc()["credentialStatus"] == nil {
		return
	}

	for _, entry := range asArray(cred.Doc()["credentialStatus"]) {
		entryMap, ok := entry.(map[string]interface{})
		if !ok {
			res.AddWarning(fmt.Sprintf("credentialStatus entry is not an object, got %T", entry))
			continue
		}

		listURL, _ := entryMap["statusListCredential"].(string)
		indexRaw, _ := entryMap["statusListIndex"].(string)
		if listURL == "" || indexRaw == "" {
			res.AddWarning("credentialStatus entry is missing statusListCredential or statusListIndex")
			continue
		}

		position, err := strconv.Atoi(indexRaw)
		if err != nil {
			res.AddWarning(fmt.Sprintf("invalid statusListIndex %q: %v", indexRaw, err))
			continue
		}

		revoked, err := s.status.CheckRevocation(ctx, listURL, position)
		if err != nil {
			s.log.WithError(err).Warn("status list check failed")
			res.AddWarning(fmt.Sprintf("could not check status list %q: %v", listURL, err))
			continue
		}
		if revoked {
			res.AddError(fmt.Sprintf("credential is revoked in status list %q", listURL))
		} else {
			res.AddCheck("credential status")
		}
	}
}
