// Package domain contains core concepts of the chat server.
// This file defines session identity and related invariants.
// No networking or runtime logic should be added here.
package domain

import (
	"fmt"
	"math/rand"
)

// Profile is the registry-visible identity of a connected session.
// Name is fixed once the session is registered; uniqueness is checked
// and enforced only at registration time.
type Profile struct {
	Name  string
	Color string
	Dnd   bool
	Addr  string
}

// PlaceholderName returns a generated nickname for clients that submit
// an empty line during negotiation.
func PlaceholderName() string {
	return fmt.Sprintf("User%d", rand.Intn(9000)+1000)
}
