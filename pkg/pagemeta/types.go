package pagemeta

import "github.com/site89/s89gated/pkg/clearance"

// MetaName is the page metadata key declaring a clearance requirement
const MetaName = "required-clearance"

// BodyAttr is the body attribute alternative to the meta tag
const BodyAttr = "data-required-clearance"

// Requirement is a page's declared minimum clearance. The zero value
// means the page is unrestricted.
type Requirement struct {
	level clearance.Level
	set   bool
}

// None returns the unrestricted requirement
func None() Requirement {
	return Requirement{}
}

// Require returns a requirement for the given level
func Require(level clearance.Level) Requirement {
	return Requirement{level: level, set: true}
}

// ParseRequirement extracts a requirement from a raw metadata value.
// A value with no digits means the page is unrestricted; that is a
// deliberate fail-open choice for malformed declarations.
func ParseRequirement(raw string) Requirement {
	level, ok := clearance.ParseLevel(raw)
	if !ok {
		return None()
	}
	return Require(level)
}

// Restricted returns true if the page declares a requirement
func (r Requirement) Restricted() bool {
	return r.set
}

// Level returns the required clearance; zero when unrestricted
func (r Requirement) Level() clearance.Level {
	return r.level
}

// Source resolves the declared clearance requirement for a page path
type Source interface {
	RequiredClearance(pagePath string) (Requirement, error)
}
