package models

// Faculty represents an instructor available for assignment.
//
// Availability is expressed either as an allow-list of slot ids or as a
// block-list; when AvailableSlotIDs is non-empty it wins and
// UnavailableSlotIDs is ignored.
type Faculty struct {
	ID                 string   `db:"id" json:"id" validate:"required"`
	Name               string   `db:"name" json:"name"`
	MinHoursPerWeek    int      `db:"min_hours_per_week" json:"min_hours_per_week" validate:"min=0"`
	MaxHoursPerWeek    int      `db:"max_hours_per_week" json:"max_hours_per_week" validate:"min=0"`
	AvailableSlotIDs   []string `db:"-" json:"available_slot_ids,omitempty"`
	UnavailableSlotIDs []string `db:"-" json:"unavailable_slot_ids,omitempty"`
}
