// Package vc implements the proof lifecycle of W3C verifiable credentials:
// issuing, verifying, and selectively disclosing credentials under a compact
// signed-token encoding and an embedded Data Integrity proof encoding.
package vc

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pilacorp/go-credential-engine/credential/common/dto"
	"github.com/pilacorp/go-credential-engine/credential/common/jsonmap"
	"github.com/pilacorp/go-credential-engine/credential/common/util"
)

// ErrMalformedCredential is returned when an unsigned credential fails
// structural validation.
var ErrMalformedCredential = errors.New("malformed credential")

// ErrNotImplemented is returned for unsupported operation combinations, such
// as agent-backed keys with the compact token format.
var ErrNotImplemented = errors.New("not implemented")

// Credential is one verifiable credential document. A Credential is owned by
// a single operation and must not be shared across concurrent invocations.
type Credential struct {
	doc jsonmap.JSONMap
}

// ParseCredential parses a credential from raw JSON.
func ParseCredential(raw []byte) (*Credential, error) {
	doc, err := jsonmap.FromJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credential: %w", err)
	}
	return &Credential{doc: doc}, nil
}

// NewCredential wraps an existing credential document.
func NewCredential(doc jsonmap.JSONMap) *Credential {
	return &Credential{doc: doc}
}

// Doc returns the underlying credential document.
func (c *Credential) Doc() jsonmap.JSONMap {
	return c.doc
}

// ToJSON serializes the credential document.
func (c *Credential) ToJSON() ([]byte, error) {
	return c.doc.ToJSON()
}

// Issuer returns the credential issuer identifier, handling both the string
// and the object form of the issuer member.
func (c *Credential) Issuer() string {
	switch issuer := c.doc["issuer"].(type) {
	case string:
		return issuer
	case map[string]interface{}:
		if id, ok := issuer["id"].(string); ok {
			return id
		}
	}
	return ""
}

// SubjectID returns the id of the (first) credential subject, if any.
func (c *Credential) SubjectID() string {
	switch subject := c.doc["credentialSubject"].(type) {
	case map[string]interface{}:
		if id, ok := subject["id"].(string); ok {
			return id
		}
	case []interface{}:
		if len(subject) > 0 {
			if m, ok := subject[0].(map[string]interface{}); ok {
				if id, ok := m["id"].(string); ok {
					return id
				}
			}
		}
	}
	return ""
}

// HasProof reports whether the credential carries a proof member.
func (c *Credential) HasProof() bool {
	return c.doc["proof"] != nil
}

// Proof returns the credential's first proof.
func (c *Credential) Proof() (*dto.Proof, error) {
	if !c.HasProof() {
		return nil, fmt.Errorf("credential has no proof")
	}

	proofMap, err := util.FirstProof(c.doc["proof"])
	if err != nil {
		return nil, err
	}

	proof, err := util.ParseProof(proofMap)
	if err != nil {
		return nil, err
	}
	return &proof, nil
}

// AttachProof sets the credential's proof member, replacing any existing proof.
func (c *Credential) AttachProof(proof *dto.Proof) {
	c.doc["proof"] = util.SerializeProof(*proof)
}

// UnsignedDoc returns the credential document without its proof member.
func (c *Credential) UnsignedDoc() jsonmap.JSONMap {
	return c.doc.CopyWithout("proof")
}

// ValidateUnsigned checks structural well-formedness of the credential,
// ignoring any attached proof: the @context member must be present, the type
// member must include VerifiableCredential, and issuer and credentialSubject
// must be present. When the credential declares a credentialSchema, the
// document is additionally validated against each referenced JSON schema.
func (c *Credential) ValidateUnsigned() error {
	if c.doc["@context"] == nil {
		return fmt.Errorf("%w: missing @context", ErrMalformedCredential)
	}

	if !hasType(c.doc["type"], "VerifiableCredential") {
		return fmt.Errorf("%w: type must include VerifiableCredential", ErrMalformedCredential)
	}

	if c.Issuer() == "" {
		return fmt.Errorf("%w: missing issuer", ErrMalformedCredential)
	}

	if c.doc["credentialSubject"] == nil {
		return fmt.Errorf("%w: missing credentialSubject", ErrMalformedCredential)
	}

	if c.doc["credentialSchema"] != nil {
		if err := c.validateSchemas(); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedCredential, err)
		}
	}

	return nil
}

func (c *Credential) validateSchemas() error {
	for _, schema := range asArray(c.doc["credentialSchema"]) {
		schemaMap, ok := schema.(map[string]interface{})
		if !ok {
			return fmt.Errorf("credentialSchema entry is not an object, got %T", schema)
		}

		schemaID, ok := schemaMap["id"].(string)
		if !ok || schemaID == "" {
			return fmt.Errorf("credentialSchema.id must be a non-empty string")
		}

		schemaLoader := gojsonschema.NewReferenceLoader(schemaID)
		credentialLoader := gojsonschema.NewGoLoader(c.UnsignedDoc())

		result, err := gojsonschema.Validate(schemaLoader, credentialLoader)
		if err != nil {
			return fmt.Errorf("failed to validate schema %q: %w", schemaID, err)
		}
		if !result.Valid() {
			return fmt.Errorf("credential does not conform to schema %q: %v", schemaID, result.Errors())
		}
	}
	return nil
}

func hasType(typeRaw interface{}, want string) bool {
	switch t := typeRaw.(type) {
	case string:
		return t == want
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func asArray(value interface{}) []interface{} {
	if value == nil {
		return nil
	}
	if arr, ok := value.([]interface{}); ok {
		return arr
	}
	return []interface{}{value}
}
