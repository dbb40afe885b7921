package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fitsync/routine-service/internal/repositories"
)

// DefaultExportService implements ExportService. The workbook carries one sheet
// for the instructor's routines and one for their roster.
type DefaultExportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

// NewDefaultExportService creates a new export service
func NewDefaultExportService(repo repositories.Repository, logger *slog.Logger) *DefaultExportService {
	return &DefaultExportService{repo: repo, logger: logger}
}

// ExportInstructorWorkbook builds an XLSX snapshot of the instructor's routines
// and students. Callers own closing the returned file.
func (s *DefaultExportService) ExportInstructorWorkbook(ctx context.Context, actor Actor) (*excelize.File, error) {
	if err := RequireInstructor(actor); err != nil {
		return nil, err
	}

	routines, err := s.repo.Routine().ListByInstructor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load routines: %v", ErrInternalError, err)
	}
	students, err := s.repo.Assignment().ListStudentsForInstructor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load students: %v", ErrInternalError, err)
	}

	f := excelize.NewFile()

	const routineSheet = "Routines"
	f.SetSheetName(f.GetSheetName(0), routineSheet)

	routineHeaders := []string{"ID", "Name", "Description", "Segments", "Total Duration (min)", "Created"}
	for i, h := range routineHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(routineSheet, cell, h)
	}
	for row, r := range routines {
		desc := ""
		if r.Description != nil {
			desc = *r.Description
		}
		values := []interface{}{
			r.ID,
			r.Name,
			desc,
			len(r.Segments),
			r.TotalDuration(),
			r.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(routineSheet, cell, v)
		}
	}

	const studentSheet = "Students"
	if _, err := f.NewSheet(studentSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: failed to build workbook: %v", ErrInternalError, err)
	}

	studentHeaders := []string{"ID", "First Name", "Last Name", "Email"}
	for i, h := range studentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(studentSheet, cell, h)
	}
	for row, st := range students {
		values := []interface{}{st.ID, st.FirstName, st.LastName, st.Email}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(studentSheet, cell, v)
		}
	}

	s.logger.Info("Instructor workbook exported",
		"instructor_id", actor.ID,
		"routines", len(routines),
		"students", len(students))

	return f, nil
}
