package utils

import (
	"log"

	"github.com/google/uuid"
)

// ConnectionID generates a UUID v4 string identifying one connection
// wrapper in diagnostic logs.
func ConnectionID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		log.Printf("Failed to generate connection id: %v", err)
		return ""
	}
	return id.String()
}
