// Package result aggregates the outcome of a single credential verification.
package result

import "encoding/json"

// VerificationResult collects the checks performed, warnings raised, and
// errors found during one verify operation. A result is passing if and only
// if its error list is empty; warnings never affect the outcome.
type VerificationResult struct {
	Checks   []string `json:"checks"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// New returns an empty VerificationResult.
func New() *VerificationResult {
	return &VerificationResult{
		Checks:   []string{},
		Warnings: []string{},
		Errors:   []string{},
	}
}

// AddCheck records a check that was performed.
func (r *VerificationResult) AddCheck(check string) {
	r.Checks = append(r.Checks, check)
}

// AddWarning records a non-fatal advisory.
func (r *VerificationResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// AddError records a verification failure.
func (r *VerificationResult) AddError(err string) {
	r.Errors = append(r.Errors, err)
}

// Passed reports whether the verification succeeded.
func (r *VerificationResult) Passed() bool {
	return len(r.Errors) == 0
}

// ExitCode maps the result onto a process-exit-style signal so automation can
// branch on pass/fail without re-parsing output: 0 for passing, 2 for failing.
func (r *VerificationResult) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 2
}

// ToJSON serializes the result verbatim for the caller.
func (r *VerificationResult) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
