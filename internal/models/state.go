package models

// State is the lifecycle tag carried by every entity.
type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

// Active reports whether the entity is visible.
func (s State) Active() bool {
	return s == StateActive
}
