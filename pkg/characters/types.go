package characters

import (
	"context"
	"errors"

	"github.com/site89/s89gated/pkg/clearance"
)

var ErrCharacterNotFound = errors.New("character not found")

// Character represents a roleplay persona belonging to one
// authenticated account.
type Character struct {
	ID   string
	Name string
	// Clearance is kept raw because records store it as either a
	// number or a decorated string. Use ClearanceLevel to read it.
	Clearance  interface{}
	Department string
	// LinkedUID is the identifier of the account that owns this
	// character. Acting as a character requires the authenticated
	// account's identifier to match it.
	LinkedUID string
}

// ClearanceLevel parses the record's clearance attribute
func (c *Character) ClearanceLevel() (clearance.Level, bool) {
	return clearance.ParseLevel(c.Clearance)
}

// Source represents a source of character records
type Source interface {
	// LoadCharacter loads the record with the given id.
	// Returns ErrCharacterNotFound if the character doesn't exist.
	LoadCharacter(ctx context.Context, id string) (*Character, error)
}
