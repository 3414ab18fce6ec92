package models

import "time"

// GroupType classifies a group.
type GroupType string

const (
	GroupTrip      GroupType = "trip"
	GroupHousehold GroupType = "household"
	GroupCouple    GroupType = "couple"
	GroupFriends   GroupType = "friends"
	GroupOther     GroupType = "other"
)

// Member is one participant of a group.
type Member struct {
	UID   string
	Name  string
	Email string
}

// Group represents a shared-spending context.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name (e.g., "Lisbon 2024", "Flat 3B").
	Name string

	Type GroupType

	// Currency is the group's default display currency.
	Currency string

	// Members is ordered. It may be empty when only a count is known.
	Members []Member

	// MembersCount and MembersTarget are cardinality hints used when member
	// records are unavailable.
	MembersCount  int
	MembersTarget int

	CreatedAt time.Time
}
