package models

// Room represents a schedulable space. A room can host a course when the
// course's required tags are a subset of the room's tags and the room
// capacity covers the group size.
type Room struct {
	ID       string   `db:"id" json:"id" validate:"required"`
	Name     string   `db:"name" json:"name"`
	Capacity int      `db:"capacity" json:"capacity" validate:"min=0"`
	Tags     []string `db:"-" json:"tags,omitempty"`
}
