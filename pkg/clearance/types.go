package clearance

// Level represents a clearance rank. 0 is public; higher levels unlock
// more restricted content.
type Level int

// Clearance tiers used across Site-89 pages and personnel records
const (
	Public       Level = 0
	Intern       Level = 1
	Restricted   Level = 2
	Confidential Level = 3
	Secret       Level = 4
	TopSecret    Level = 5
	Overseer     Level = 6
)

// Satisfies returns true if the level meets the required level
func (l Level) Satisfies(required Level) bool {
	return l >= required
}
