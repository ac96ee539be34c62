// Package uuid generates job identifiers.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator produces random UUIDv4 identifiers.
type Generator struct{}

// New returns a Generator.
func New() Generator { return Generator{} }

// NewID returns a fresh UUID string.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}
