package models

import "time"

// RoutineAssignment joins a routine to a student. One routine can be assigned to many
// students and one student can hold many routines; each row stands on its own.
type RoutineAssignment struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	RoutineID uint `json:"routine_id" gorm:"not null;index"`
	StudentID uint `json:"student_id" gorm:"not null;index"`

	Routine Routine `json:"-" gorm:"foreignKey:RoutineID"`
	Student User    `json:"student" gorm:"foreignKey:StudentID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RoutineAssignment) TableName() string {
	return "routine_assignments"
}
