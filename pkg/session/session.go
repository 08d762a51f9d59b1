// Package session reads the client-owned selected-character cache. The
// cache is written by the character selection and logout flows and is
// client-editable, so it is never trusted on its own: the verified gate
// uses only the id as a lookup hint.
package session

import "encoding/json"

// Context is a read-only snapshot of the selected-character cache for
// one page load
type Context struct {
	// SelectedID is the cached character id, usable as a lookup hint
	SelectedID string
	// CachedName is the display name as the client cached it
	CachedName string
	// CachedClearance is the clearance value as the client cached
	// it. Only the local (trusting) gate reads this.
	CachedClearance interface{}
}

// selectedCharacter mirrors the serialized cache blob
type selectedCharacter struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Clearance interface{} `json:"clearance"`
}

// Parse decodes a serialized selected-character blob. An empty or
// unparsable blob yields an empty context, meaning no character is
// selected.
func Parse(raw string) Context {
	if raw == "" {
		return Context{}
	}

	var sc selectedCharacter
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		return Context{}
	}

	return Context{
		SelectedID:      sc.ID,
		CachedName:      sc.Name,
		CachedClearance: sc.Clearance,
	}
}

// HasSelection returns true if a character id is cached
func (c Context) HasSelection() bool {
	return c.SelectedID != ""
}
