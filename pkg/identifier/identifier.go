// Package identifier parses the combined "owner/name:version" reference
// strings accepted by the prediction endpoints.
package identifier

import (
	"strings"

	"github.com/mlship/replicate-go/pkg/api"
)

// Identifier is a parsed model version reference.
type Identifier struct {
	// Model is the "owner/name" part before the first colon.
	Model string

	// Version is everything after the first colon. Further colons are
	// part of the version, not separators.
	Version string
}

// Parse splits ref at the first ':' and validates that the model part
// has the owner/name shape. It fails when no colon is present or the
// part before it lacks a '/'.
func Parse(ref string) (Identifier, error) {
	model, version, found := strings.Cut(ref, ":")
	if !found {
		return Identifier{}, &api.InvalidIdentifierError{Ref: ref}
	}
	if !strings.Contains(model, "/") {
		return Identifier{}, &api.InvalidIdentifierError{Ref: ref}
	}
	return Identifier{Model: model, Version: version}, nil
}

// String reassembles the reference.
func (id Identifier) String() string {
	return id.Model + ":" + id.Version
}
