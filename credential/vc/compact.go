package vc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pilacorp/go-credential-engine/credential/common/jwt"
	"github.com/pilacorp/go-credential-engine/credential/common/keys"
	"github.com/pilacorp/go-credential-engine/credential/common/result"
)

// CompactTokenStrategy issues and verifies credentials in the compact
// signed-token encoding: a single opaque string whose header carries the
// proof metadata and whose payload carries the credential claims.
type CompactTokenStrategy struct {
	resolver PublicKeyResolver
	log      *logrus.Entry
}

// PublicKeyResolver resolves a verification method URI into a hex-encoded
// public key.
type PublicKeyResolver interface {
	ResolvePublicKey(ctx context.Context, verificationMethod string) (string, error)
}

// NewCompactTokenStrategy returns the compact token strategy.
func NewCompactTokenStrategy(resolver PublicKeyResolver) *CompactTokenStrategy {
	return &CompactTokenStrategy{
		resolver: resolver,
		log:      logrus.WithField("component", "vc/compact"),
	}
}

// Issue serializes the credential into a signed compact token. Key material
// must be inline: delivery through a signing agent is not supported for this
// encoding and fails before any cryptographic work.
func (s *CompactTokenStrategy) Issue(ctx context.Context, cred *Credential,
	key *keys.Key, opts *ProofOptions) (string, error) {
	if key == nil {
		return "", keys.ErrNoKey
	}
	if key.AgentBacked() {
		return "", fmt.Errorf("%w: signing agent delivery is not supported for the compact token format",
			ErrNotImplemented)
	}

	privKeyHex, err := key.Hex()
	if err != nil {
		return "", err
	}

	issuer := cred.Issuer()
	if issuer == "" {
		return "", fmt.Errorf("%w: missing issuer", ErrMalformedCredential)
	}

	claims := map[string]interface{}{
		"vc":  map[string]interface{}(cred.UnsignedDoc()),
		"iss": issuer,
	}

	if sub := cred.SubjectID(); sub != "" {
		claims["sub"] = sub
	}

	if id, ok := cred.Doc()["id"].(string); ok && id != "" {
		claims["jti"] = id
	} else {
		claims["jti"] = "urn:uuid:" + uuid.NewString()
	}

	if validFrom, ok := cred.Doc()["validFrom"].(string); ok {
		if t, err := time.Parse(time.RFC3339, validFrom); err == nil {
			claims["nbf"] = t.Unix()
			claims["iat"] = t.Unix()
		}
	}
	if validUntil, ok := cred.Doc()["validUntil"].(string); ok {
		if t, err := time.Parse(time.RFC3339, validUntil); err == nil {
			claims["exp"] = t.Unix()
		}
	}

	signer := jwt.NewSigner(privKeyHex, opts.verificationMethodOrDefault(issuer))

	token, err := signer.SignClaims(claims)
	if err != nil {
		return "", fmt.Errorf("failed to issue compact token: %w", err)
	}
	return token, nil
}

// Verify checks a compact token and aggregates the outcome. Surrounding
// whitespace is trimmed before parsing; trimming that changed the input is
// reported as an advisory, never as an error.
func (s *CompactTokenStrategy) Verify(ctx context.Context, token string,
	opts *ProofOptions) *result.VerificationResult {
	res := result.New()

	trimmed := strings.TrimSpace(token)
	if trimmed != token {
		s.log.Warn("compact token was trimmed for extraneous whitespace and new lines")
		res.AddWarning("compact token was trimmed for extraneous whitespace and new lines")
	}

	if err := jwt.NewVerifier(s.resolver).Verify(ctx, trimmed); err != nil {
		res.AddError(fmt.Sprintf("signature check failed: %v", err))
		return res
	}
	res.AddCheck("ES256K signature")

	_, payload, err := jwt.DecodeParts(trimmed)
	if err != nil {
		res.AddError(fmt.Sprintf("failed to decode token payload: %v", err))
		return res
	}

	if _, ok := payload["vc"].(map[string]interface{}); !ok {
		res.AddError("vc claim not found in token payload")
		return res
	}
	res.AddCheck("credential claim")

	now := time.Now().Unix()
	if exp, ok := claimAsInt64(payload["exp"]); ok {
		if now >= exp {
			res.AddError("token is expired")
		} else {
			res.AddCheck("expiration")
		}
	}
	if nbf, ok := claimAsInt64(payload["nbf"]); ok {
		if now < nbf {
			res.AddError("token is not yet valid")
		} else {
			res.AddCheck("not-before")
		}
	}

	return res
}

func claimAsInt64(claim interface{}) (int64, bool) {
	n, ok := claim.(float64)
	if !ok {
		return 0, false
	}
	return int64(n), true
}
