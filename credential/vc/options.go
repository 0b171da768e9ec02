package vc

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ProofFormat selects the proof encoding used by one operation. The set of
// formats is closed; dispatch over it must handle every member and reject
// anything else.
type ProofFormat string

const (
	// ProofFormatJWT is the compact signed-token encoding.
	ProofFormatJWT ProofFormat = "jwt"
	// ProofFormatLDP is the embedded Data Integrity proof encoding.
	ProofFormatLDP ProofFormat = "ldp"
)

// ProofOptions configures proof generation and verification. It is consumed
// read-only by the proof strategies.
type ProofOptions struct {
	ProofFormat        ProofFormat `json:"proofFormat,omitempty" mapstructure:"proofFormat"`
	VerificationMethod string      `json:"verificationMethod,omitempty" mapstructure:"verificationMethod"`
	ProofPurpose       string      `json:"proofPurpose,omitempty" mapstructure:"proofPurpose"`
	Created            *time.Time  `json:"created,omitempty" mapstructure:"created"`
	Challenge          string      `json:"challenge,omitempty" mapstructure:"challenge"`
	Domain             string      `json:"domain,omitempty" mapstructure:"domain"`
	// Nonce is the expected replay binding when verifying a derived
	// credential.
	Nonce string `json:"nonce,omitempty" mapstructure:"nonce"`
}

// ProofOptionsFromMap decodes proof options from a generic JSON map.
func ProofOptionsFromMap(m map[string]interface{}) (*ProofOptions, error) {
	var opts ProofOptions

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &opts,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build proof options decoder: %w", err)
	}

	if err := decoder.Decode(m); err != nil {
		return nil, fmt.Errorf("failed to decode proof options: %w", err)
	}
	return &opts, nil
}

// verificationMethodOrDefault returns the configured verification method, or
// the issuer's default key reference when none is set.
func (o *ProofOptions) verificationMethodOrDefault(issuer string) string {
	if o.VerificationMethod != "" {
		return o.VerificationMethod
	}
	return fmt.Sprintf("%s#%s", issuer, "key-1")
}

// proofPurposeOrDefault returns the configured proof purpose, defaulting to
// assertionMethod.
func (o *ProofOptions) proofPurposeOrDefault() string {
	if o.ProofPurpose != "" {
		return o.ProofPurpose
	}
	return "assertionMethod"
}

// createdOrNow returns the configured creation timestamp, defaulting to the
// current time, formatted as RFC 3339 UTC.
func (o *ProofOptions) createdOrNow() string {
	if o.Created != nil {
		return o.Created.UTC().Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.RFC3339)
}
