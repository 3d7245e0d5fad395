package types

import "github.com/google/uuid"

// NewNodeID generates a UUIDv7 node identifier.
// Time-ordered ids keep builder sessions debuggable (creation order is
// recoverable from the id alone). Panics on clock regression (uuid.Must);
// acceptable for ID generation.
//
// Template anchor nodes use well-known fixed ids instead; see
// internal/rules anchors.
func NewNodeID() string {
	return uuid.Must(uuid.NewV7()).String()
}
