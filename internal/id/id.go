// Package id generates the prefixed identifiers used for every persisted
// entity (e.g. "user-…", "coll-…", "bm-…", "session-…").
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate returns prefix + "-" + a 21-character URL-safe NanoID.
// The prefix makes IDs self-describing in logs and API payloads.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate panics when the random source fails. Reserve it for
// initialization paths where there is no caller to return an error to.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
