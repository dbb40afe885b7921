package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fitsync/routine-service/internal/services"
	"github.com/fitsync/routine-service/internal/utils"
)

type InstructorHandler struct {
	BaseHandler
	service services.InstructorService
	export  services.ExportService
}

func NewInstructorHandler(service services.InstructorService, export services.ExportService, logger utils.Logger) *InstructorHandler {
	return &InstructorHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		export:      export,
	}
}

// ===== INSTRUCTOR CODE =====

// GetCode returns the instructor's active join code
// @Summary Get instructor code
// @Tags instructors
// @Produce json
// @Success 200 {object} services.CodeResponse
// @Failure 403 {object} ErrorResponse
// @Router /instructor/code [get]
func (h *InstructorHandler) GetCode(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting instructor code")

	resp, err := h.service.GetCode(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RegenerateCode replaces the instructor's join code
// @Summary Regenerate instructor code
// @Tags instructors
// @Produce json
// @Success 200 {object} services.CodeResponse
// @Failure 403 {object} ErrorResponse
// @Router /instructor/code/regenerate [post]
func (h *InstructorHandler) RegenerateCode(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Regenerating instructor code")

	resp, err := h.service.RegenerateCode(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckCode resolves a typed code to its owner; no authentication required
// @Summary Check instructor code
// @Tags instructors
// @Accept json
// @Produce json
// @Success 200 {object} services.CodeCheckResponse
// @Failure 400 {object} ErrorResponse "Malformed code"
// @Router /instructor/code/check [post]
func (h *InstructorHandler) CheckCode(c *gin.Context) {
	var req services.CodeCheckRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Checking instructor code")

	resp, err := h.service.CheckCode(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== ROUTINES =====

// CreateRoutine stores a new routine with its segments
// @Summary Create routine
// @Tags routines
// @Accept json
// @Produce json
// @Success 201 {object} services.RoutineDetail
// @Failure 400 {object} ErrorResponse
// @Router /instructor/routines [post]
func (h *InstructorHandler) CreateRoutine(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	var req services.RoutineCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating routine", "name", req.Name)

	resp, err := h.service.CreateRoutine(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListRoutines returns the instructor's routines, newest first
// @Summary List routines
// @Tags routines
// @Produce json
// @Success 200 {array} services.RoutineSummary
// @Router /instructor/routines [get]
func (h *InstructorHandler) ListRoutines(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing routines")

	resp, err := h.service.ListRoutines(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetRoutine returns one owned routine with segments and roster
// @Summary Get routine
// @Tags routines
// @Produce json
// @Success 200 {object} services.RoutineDetail
// @Failure 404 {object} ErrorResponse
// @Router /instructor/routines/{id} [get]
func (h *InstructorHandler) GetRoutine(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting routine", "routine_id", id)

	resp, err := h.service.GetRoutine(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateRoutine applies partial updates; a segment list replaces the whole set
// @Summary Update routine
// @Tags routines
// @Accept json
// @Produce json
// @Success 200 {object} services.RoutineDetail
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /instructor/routines/{id} [patch]
func (h *InstructorHandler) UpdateRoutine(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.RoutineUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating routine", "routine_id", id)

	resp, err := h.service.UpdateRoutine(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== STUDENTS =====

// ListStudents returns the instructor's roster
// @Summary List students
// @Tags students
// @Produce json
// @Success 200 {array} models.PublicUser
// @Router /instructor/students [get]
func (h *InstructorHandler) ListStudents(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing students")

	resp, err := h.service.ListStudents(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetStudent returns one roster student with their assigned routines
// @Summary Get student
// @Tags students
// @Produce json
// @Success 200 {object} services.StudentDetail
// @Failure 404 {object} ErrorResponse
// @Router /instructor/students/{id} [get]
func (h *InstructorHandler) GetStudent(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting student", "student_id", id)

	resp, err := h.service.GetStudent(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateStudentRoutines replaces the student's assignment set
// @Summary Replace student routines
// @Description Declarative full replace: listed routines end up assigned, everything else from this instructor is unassigned
// @Tags students
// @Accept json
// @Produce json
// @Success 200 {array} services.RoutineSummary
// @Failure 400 {object} ErrorResponse "Foreign routine id in the list"
// @Failure 404 {object} ErrorResponse
// @Router /instructor/students/{id}/routines [patch]
func (h *InstructorHandler) UpdateStudentRoutines(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateStudentRoutinesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Replacing student routines", "student_id", id, "count", len(req.RoutineIDs))

	resp, err := h.service.UpdateStudentRoutines(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== EXPORT =====

// ExportWorkbook streams an XLSX snapshot of the instructor's routines and roster
// @Summary Export instructor data
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /instructor/export [get]
func (h *InstructorHandler) ExportWorkbook(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting instructor workbook")

	f, err := h.export.ExportInstructorWorkbook(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("routines-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(c.Writer); err != nil {
		h.LogError(c, err, "Failed to stream workbook")
	}
}
