package models

// StudentGroup represents a cohort that attends sessions together.
type StudentGroup struct {
	ID       string `db:"id" json:"id" validate:"required"`
	Name     string `db:"name" json:"name"`
	Program  string `db:"program" json:"program" validate:"required"`
	Branch   string `db:"branch" json:"branch" validate:"required"`
	Semester int    `db:"semester" json:"semester" validate:"min=1"`
	Size     int    `db:"size" json:"size" validate:"min=0"`
}
