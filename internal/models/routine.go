package models

import (
	"time"

	"gorm.io/datatypes"
)

type Routine struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`

	// InstructorID never changes after creation.
	InstructorID uint `json:"instructor_id" gorm:"not null;index"`

	Instructor  User                `json:"-" gorm:"foreignKey:InstructorID"`
	Segments    []RoutineSegment    `json:"segments" gorm:"foreignKey:RoutineID"`
	Assignments []RoutineAssignment `json:"-" gorm:"foreignKey:RoutineID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Routine) TableName() string {
	return "routines"
}

// TotalDuration sums the durations of the loaded segments, in minutes. Always computed
// here over the distinct in-memory collection; a SQL SUM across the assignment join
// would double-count segments once per assigned student.
func (r *Routine) TotalDuration() int {
	total := 0
	for _, s := range r.Segments {
		total += s.Duration
	}
	return total
}

// RoutineSegment is one ordered block of a routine. Position is the authoring order
// and the only ordering the read path applies.
type RoutineSegment struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	RoutineID uint   `json:"routine_id" gorm:"not null;index;uniqueIndex:idx_routine_position"`
	Position  int    `json:"position" gorm:"not null;uniqueIndex:idx_routine_position"`
	Name      string `json:"name" gorm:"size:200"`

	// Duration in minutes.
	Duration int `json:"duration" gorm:"not null"`

	// Effort carries the free-form target-effort payload authored in the UI
	// (heart-rate zones, RPE, pace targets).
	Effort datatypes.JSON `json:"effort,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RoutineSegment) TableName() string {
	return "routine_segments"
}
