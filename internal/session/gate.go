package session

// Affordances lists which controls are enabled for a user in a room.
// The gate only hides UI affordances; the state channel itself applies
// no authorization, so a client writing to the store directly is not
// stopped by anything here.
type Affordances struct {
	CanToggleEdit   bool `json:"can_toggle_edit"`
	CanAddSeat      bool `json:"can_add_seat"`
	CanRemoveSeat   bool `json:"can_remove_seat"`
	CanReset        bool `json:"can_reset"`
	CanFreeSeat     bool `json:"can_free_seat"`
	ShowEditOverlay bool `json:"show_edit_overlay"`
	ShowSidePanel   bool `json:"show_side_panel"`
}

// AffordancesFor derives the enabled controls from the current user,
// the room's owner and the session-local edit mode flag. The overlay
// and side panel require both ownership and edit mode.
func AffordancesFor(userId, ownerUserId int, editMode bool) Affordances {
	owner := userId != 0 && userId == ownerUserId
	return Affordances{
		CanToggleEdit:   owner,
		CanAddSeat:      owner,
		CanRemoveSeat:   owner,
		CanReset:        owner,
		CanFreeSeat:     owner,
		ShowEditOverlay: owner && editMode,
		ShowSidePanel:   owner && editMode,
	}
}
