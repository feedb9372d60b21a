package core

import (
	"github.com/google/uuid"
)

// GenerateUUID returns a new unique identifier. Used to tag tracked native
// resources so teardown logging can tell handles of the same type apart.
func GenerateUUID() string {
	return uuid.New().String()
}
