package models

// Day enumerates teaching days, Monday through Saturday.
type Day string

const (
	DayMonday    Day = "MONDAY"
	DayTuesday   Day = "TUESDAY"
	DayWednesday Day = "WEDNESDAY"
	DayThursday  Day = "THURSDAY"
	DayFriday    Day = "FRIDAY"
	DaySaturday  Day = "SATURDAY"
)

var dayIndexMap = map[Day]int{
	DayMonday:    1,
	DayTuesday:   2,
	DayWednesday: 3,
	DayThursday:  4,
	DayFriday:    5,
	DaySaturday:  6,
}

// DayIndex returns the 1-based weekday position, or 0 for an unknown day.
func DayIndex(d Day) int {
	return dayIndexMap[d]
}

// Days returns all teaching days in week order.
func Days() []Day {
	return []Day{DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday}
}

// TimeSlot is one (day, period) capacity unit. Periods are ordered within a
// day starting at 1.
type TimeSlot struct {
	ID     string `db:"id" json:"id" validate:"required"`
	Day    Day    `db:"day" json:"day" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY"`
	Period int    `db:"period" json:"period" validate:"min=1"`
}
