package models

import (
	"time"
)

type UserRole string

const (
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleStudent    UserRole = "STUDENT"
)

// Valid reports whether the role is one the service knows about.
// Role is assigned at signup and never changes afterwards.
func (r UserRole) Valid() bool {
	return r == RoleInstructor || r == RoleStudent
}

type User struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	FirstName string   `json:"first_name" gorm:"not null;size:100"`
	LastName  string   `json:"last_name" gorm:"not null;size:100"`
	Email     string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password  string   `json:"-" gorm:"not null;size:255"`
	Role      UserRole `json:"role" gorm:"not null;size:20;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// PublicUser is the cross-user visible projection (never the password hash).
type PublicUser struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// InstructorStudent links a student to their instructor. The row is created when a
// student signs up with a valid instructor code.
type InstructorStudent struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	InstructorID uint `json:"instructor_id" gorm:"not null;index;uniqueIndex:idx_instructor_student"`
	StudentID    uint `json:"student_id" gorm:"not null;uniqueIndex:idx_instructor_student"`

	Instructor User `json:"-" gorm:"foreignKey:InstructorID"`
	Student    User `json:"-" gorm:"foreignKey:StudentID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InstructorStudent) TableName() string {
	return "instructor_students"
}
