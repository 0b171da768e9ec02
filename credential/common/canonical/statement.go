package canonical

import (
	"crypto/sha256"
	"strings"

	"github.com/piprate/json-gold/ld"
)

// Statement is one atomic N-Quad fact extracted from a canonicalized
// credential, carrying its stable position within the statement set.
type Statement struct {
	Position int
	Value    string
}

// Digest returns the SHA-256 digest of the statement.
func (s Statement) Digest() []byte {
	sum := sha256.Sum256([]byte(s.Value))
	return sum[:]
}

// Predicate returns the predicate IRI of the statement, or an empty string if
// the statement cannot be parsed as a single N-Quad.
func (s Statement) Predicate() string {
	dataset, err := ld.ParseNQuads(s.Value)
	if err != nil {
		return ""
	}

	for _, quads := range dataset.Graphs {
		for _, quad := range quads {
			switch iri := quad.Predicate.(type) {
			case *ld.IRI:
				return iri.Value
			case ld.IRI:
				return iri.Value
			}
		}
	}
	return ""
}

const (
	blankNodeLabelPrefix = "_:c14n"
	blankNodeIRIPrefix   = "<urn:bnid:"
)

// TransformBlankNode replaces canonical blank node labels in an RDF statement
// with stable IRIs, e.g. "_:c14n0" becomes "<urn:bnid:_:c14n0>". A subset of
// transformed statements can then be re-canonicalized without renumbering the
// nodes. Labels that are already transformed are left alone.
func TransformBlankNode(row string) string {
	tokens := strings.Split(row, " ")
	for i, token := range tokens {
		if strings.HasPrefix(token, blankNodeLabelPrefix) {
			tokens[i] = blankNodeIRIPrefix + token + ">"
		}
	}
	return strings.Join(tokens, " ")
}

// RestoreBlankNode is the inverse of TransformBlankNode: stable blank node
// IRIs become canonical blank node labels again, so a re-canonicalized
// disclosure digests identically to the statements it was taken from.
func RestoreBlankNode(row string) string {
	tokens := strings.Split(row, " ")
	for i, token := range tokens {
		if strings.HasPrefix(token, blankNodeIRIPrefix+blankNodeLabelPrefix) &&
			strings.HasSuffix(token, ">") {
			tokens[i] = token[len(blankNodeIRIPrefix) : len(token)-1]
		}
	}
	return strings.Join(tokens, " ")
}

// SplitStatements splits a canonical document into its ordered statement set.
// Position assignment follows canonical line order; blank lines are skipped.
func SplitStatements(canonicalDoc []byte) []Statement {
	rows := strings.Split(string(canonicalDoc), "\n")

	statements := make([]Statement, 0, len(rows))
	for i := range rows {
		if strings.TrimSpace(rows[i]) == "" {
			continue
		}
		statements = append(statements, Statement{
			Position: len(statements),
			Value:    rows[i],
		})
	}
	return statements
}

// Values returns the raw statement strings in position order.
func Values(statements []Statement) []string {
	values := make([]string, len(statements))
	for i, s := range statements {
		values[i] = s.Value
	}
	return values
}

// ValuesAt returns the statement strings at the given positions, in the order
// the positions are supplied. Positions outside the set are skipped; an empty
// position list selects nothing.
func ValuesAt(statements []Statement, positions []int) []string {
	values := make([]string, 0, len(positions))
	for _, p := range positions {
		if p >= 0 && p < len(statements) {
			values = append(values, statements[p].Value)
		}
	}
	return values
}
