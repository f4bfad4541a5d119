package models

// Snapshot is the immutable input set a generation run reads at start.
// QualifiedFaculty maps course id to the faculty permitted to teach it; an
// absent or empty entry means any faculty member qualifies.
type Snapshot struct {
	Courses          []Course            `json:"courses" validate:"dive"`
	Faculty          []Faculty           `json:"faculty" validate:"dive"`
	Rooms            []Room              `json:"rooms" validate:"dive"`
	Groups           []StudentGroup      `json:"groups" validate:"dive"`
	TimeSlots        []TimeSlot          `json:"time_slots" validate:"dive"`
	QualifiedFaculty map[string][]string `json:"qualified_faculty,omitempty"`
}
