package models

// Group is a user-defined label. Names are unique.
type Group struct {
	Name string
	// Order is the position in the group list.
	Order int
}

// LoadRequest selects what a gateway load returns. ImportRef wins over ID;
// with neither set a blank card is returned.
type LoadRequest struct {
	ID        int64
	ImportRef string
	// Duplicate copies the card with ID as a new, unsaved card.
	Duplicate bool
}

// LoadedCard is a card together with its groups and every known group.
type LoadedCard struct {
	Card      Card
	Groups    []Group
	AllGroups []Group
}

// CloneGroups copies a group slice.
func CloneGroups(g []Group) []Group {
	if g == nil {
		return nil
	}
	out := make([]Group, len(g))
	copy(out, g)
	return out
}
