// Package domain contains entities with as little logic as possible, just meta-data
package domain

import (
	"github.com/google/uuid"
)

// ConnID is the opaque identity of one live connection.
type ConnID string

// NewConnID returns a fresh process-wide unique identity.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// Conn is the read-only view of a live connection.
type Conn struct {
	ID ConnID `json:"id"`
	// ClientToken is the browser session token, if the transport has one.
	ClientToken string `json:"-"`
}
