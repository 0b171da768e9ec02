package vc

import (
	"errors"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/pilacorp/go-credential-engine/credential/common/canonical"
)

// ErrNoSelectors signals that a caller supplied an empty selector list.
var ErrNoSelectors = errors.New("no selectors given")

// ErrNoDisclosure is returned when none of the supplied selectors matched a
// statement, so a derivation would disclose nothing.
var ErrNoDisclosure = errors.New("selectors matched no statements")

// Resolution is the outcome of resolving selectors against a canonical
// statement set. Positions follow canonical statement order regardless of
// selector input order; Unmatched lists the selectors that matched nothing,
// in input order.
type Resolution struct {
	Positions []int
	Unmatched []string
}

// ResolveSelectors maps human-readable property selectors (dotted paths such
// as "credentialSubject.name") onto positions in the canonical statement set.
// A selector matches a statement when it equals the statement's predicate IRI,
// or when its last path segment equals the IRI's fragment or final path
// segment. Unmatched selectors are non-fatal and do not abort resolution of
// the remaining selectors.
func ResolveSelectors(statements []canonical.Statement, selectors []string) (*Resolution, error) {
	if len(selectors) == 0 {
		return nil, ErrNoSelectors
	}

	matched := make(map[string]bool, len(selectors))

	var positions []int

	for _, statement := range statements {
		predicate := statement.Predicate()
		if predicate == "" {
			continue
		}

		for _, selector := range selectors {
			if selectorMatches(selector, predicate) {
				matched[selector] = true

				if !slices.Contains(positions, statement.Position) {
					positions = append(positions, statement.Position)
				}
			}
		}
	}

	var unmatched []string
	for _, selector := range selectors {
		if !matched[selector] {
			unmatched = append(unmatched, selector)
		}
	}

	return &Resolution{Positions: positions, Unmatched: unmatched}, nil
}

// selectorMatches reports whether a selector identifies the given predicate IRI.
func selectorMatches(selector, predicate string) bool {
	if selector == "" {
		return false
	}
	if selector == predicate {
		return true
	}

	return lastSegment(selector) == iriLocalName(predicate)
}

// lastSegment returns the final segment of a dotted selector path.
func lastSegment(selector string) string {
	if i := strings.LastIndex(selector, "."); i >= 0 {
		return selector[i+1:]
	}
	return selector
}

// iriLocalName returns the fragment of an IRI, or its final path segment when
// it has no fragment.
func iriLocalName(iri string) string {
	if i := strings.LastIndex(iri, "#"); i >= 0 {
		return iri[i+1:]
	}
	if i := strings.LastIndex(iri, "/"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}
