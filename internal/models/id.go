package models

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID returns a short random identifier of 8 lowercase hex characters.
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:4])
}
