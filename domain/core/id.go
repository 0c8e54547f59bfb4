package core

import (
	"strings"

	"github.com/google/uuid"
)

// ID is an opaque 128-bit identifier for a ManifoldPoint or related record.
type ID string

// NewID creates a new time-ordered identifier using UUIDv7, falling back to
// UUIDv4 if the v7 generator is unavailable.
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation.
func (id ID) String() string {
	return string(id)
}

// IsEmpty reports whether the ID carries no value.
func (id ID) IsEmpty() bool {
	return id == ""
}

// ParseID parses a string into an ID, rejecting blank input.
func ParseID(s string) (ID, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrInvalidID
	}
	return ID(s), nil
}

// SourceFingerprint identifies the originating source of a ManifoldPoint
// (e.g. a hashed user or conversation participant identifier).
type SourceFingerprint string

// ConversationID groups ManifoldPoints emitted within the same interaction.
type ConversationID string

// IsEmpty reports whether the conversation grouping key is unset.
func (c ConversationID) IsEmpty() bool {
	return c == ""
}
