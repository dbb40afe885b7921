package services

import (
	"time"

	"github.com/fitsync/routine-service/internal/models"
)

// Projection helpers shared by the instructor and student services. Segments come
// out of the repository already ordered by position; these functions preserve that
// order and never re-sort.

func toSegmentResponses(segments []models.RoutineSegment) []SegmentResponse {
	out := make([]SegmentResponse, 0, len(segments))
	for _, s := range segments {
		out = append(out, SegmentResponse{
			ID:       s.ID,
			Position: s.Position,
			Name:     s.Name,
			Duration: s.Duration,
			Effort:   s.Effort,
		})
	}
	return out
}

func toRoutineSummary(routine *models.Routine) RoutineSummary {
	return RoutineSummary{
		ID:            routine.ID,
		Name:          routine.Name,
		Description:   routine.Description,
		SegmentCount:  len(routine.Segments),
		TotalDuration: routine.TotalDuration(),
		CreatedAt:     routine.CreatedAt.Format(time.RFC3339),
	}
}

func toRoutineSummaries(routines []*models.Routine) []RoutineSummary {
	out := make([]RoutineSummary, 0, len(routines))
	for _, r := range routines {
		out = append(out, toRoutineSummary(r))
	}
	return out
}

// toRoutineDetail builds the full projection. withRoster controls whether assigned
// students are exposed; only instructor reads set it.
func toRoutineDetail(routine *models.Routine, withRoster bool) *RoutineDetail {
	detail := &RoutineDetail{
		ID:            routine.ID,
		Name:          routine.Name,
		Description:   routine.Description,
		TotalDuration: routine.TotalDuration(),
		Segments:      toSegmentResponses(routine.Segments),
		CreatedAt:     routine.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     routine.UpdatedAt.Format(time.RFC3339),
	}
	if withRoster {
		students := make([]models.PublicUser, 0, len(routine.Assignments))
		for _, a := range routine.Assignments {
			students = append(students, a.Student.Public())
		}
		detail.Students = students
	}
	return detail
}
