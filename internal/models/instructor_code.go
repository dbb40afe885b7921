package models

import "time"

// CodeLength is the number of characters in an instructor code. The UI renders and
// uppercases exactly six characters.
const CodeLength = 6

// InstructorCode is the single active join code owned by an instructor. Regeneration
// rewrites Value in place, so the unique index on Value covers every active code and
// the previous value stops resolving the moment the new one commits.
type InstructorCode struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	InstructorID uint   `json:"instructor_id" gorm:"not null;uniqueIndex"`
	Value        string `json:"value" gorm:"not null;uniqueIndex;size:12"`

	Instructor User `json:"-" gorm:"foreignKey:InstructorID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InstructorCode) TableName() string {
	return "instructor_codes"
}
