package dto

// Proof represents a Data Integrity proof attached to a Verifiable Credential.
type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	ProofValue         string `json:"proofValue,omitempty"`
	Cryptosuite        string `json:"cryptosuite,omitempty"`
	Challenge          string `json:"challenge,omitempty"`
	Domain             string `json:"domain,omitempty"`

	// Selective-disclosure fields, present only on derived credentials.
	// StatementDigests is the full ordered digest list of the issuer's
	// canonical statement set (multibase encoded), DisclosedIndexes are the
	// statement positions revealed by the holder, Nonce is the
	// verifier-supplied replay binding.
	StatementDigests []string `json:"statementDigests,omitempty"`
	DisclosedIndexes []int    `json:"disclosedIndexes,omitempty"`
	Nonce            string   `json:"nonce,omitempty"`
}
