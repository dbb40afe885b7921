package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventRoutineAssigned   EventType = "routine.assigned"
	EventRoutineUnassigned EventType = "routine.unassigned"
	EventCodeRegenerated   EventType = "instructor.code_regenerated"
	EventStudentLinked     EventType = "student.linked"
)

// DomainEvent is the envelope every published event travels in.
type DomainEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewDomainEvent builds an envelope with a fresh ID and the service identity filled in.
func NewDomainEvent(eventType EventType, data interface{}) *DomainEvent {
	return &DomainEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "routine-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// RoutineAssignedEvent is emitted once per routine added to a student's set.
type RoutineAssignedEvent struct {
	RoutineID    uint   `json:"routine_id"`
	RoutineName  string `json:"routine_name"`
	InstructorID uint   `json:"instructor_id"`
	StudentID    uint   `json:"student_id"`
}

// RoutineUnassignedEvent is emitted once per routine removed from a student's set.
type RoutineUnassignedEvent struct {
	RoutineID    uint `json:"routine_id"`
	InstructorID uint `json:"instructor_id"`
	StudentID    uint `json:"student_id"`
}

// CodeRegeneratedEvent is emitted when an instructor rotates their join code. The code
// value itself is deliberately not part of the payload.
type CodeRegeneratedEvent struct {
	InstructorID uint `json:"instructor_id"`
}

// StudentLinkedEvent is emitted when a signup with a valid code links a student to an
// instructor.
type StudentLinkedEvent struct {
	InstructorID uint `json:"instructor_id"`
	StudentID    uint `json:"student_id"`
}
