package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pilacorp/go-credential-engine/credential/vc"
)

// Query resolves selectors against a credential's canonical statement set and
// returns the matched positions in canonical order, without signing anything.
// An empty selector list is ErrNoSelectors so callers can distinguish "asked
// nothing" from "matched nothing".
func (e *Engine) Query(ctx context.Context, credentialJSON []byte,
	selectors []string) ([]int, error) {
	if len(selectors) == 0 {
		return nil, vc.ErrNoSelectors
	}

	cred, err := vc.ParseCredential(credentialJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	statements, err := cred.Statements(e.canonOpts...)
	if err != nil {
		return nil, err
	}

	resolution, err := vc.ResolveSelectors(statements, selectors)
	if err != nil {
		return nil, err
	}

	for _, unmatched := range resolution.Unmatched {
		e.log.WithField("selector", unmatched).Warn("selector matched no statement")
	}

	return resolution.Positions, nil
}

// FormatPositions renders positions as a space-joined string for CLI-style
// output.
func FormatPositions(positions []int) string {
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, " ")
}
