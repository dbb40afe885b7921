package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitsync/routine-service/internal/services"
	"github.com/fitsync/routine-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	service services.StudentService
}

func NewStudentHandler(service services.StudentService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetProfile returns the student's own account plus their instructor
// @Summary Get own profile
// @Tags students
// @Produce json
// @Success 200 {object} services.StudentProfile
// @Failure 403 {object} ErrorResponse
// @Router /students/me [get]
func (h *StudentHandler) GetProfile(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting student profile")

	resp, err := h.service.GetProfile(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListRoutines returns the routines assigned to the student
// @Summary List assigned routines
// @Tags students
// @Produce json
// @Success 200 {array} services.RoutineSummary
// @Router /students/routines [get]
func (h *StudentHandler) ListRoutines(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing assigned routines")

	resp, err := h.service.ListRoutines(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetRoutine returns one assigned routine with its segments
// @Summary Get assigned routine
// @Tags students
// @Produce json
// @Success 200 {object} services.RoutineDetail
// @Failure 404 {object} ErrorResponse "Unknown or unassigned routine"
// @Router /students/routines/{id} [get]
func (h *StudentHandler) GetRoutine(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting assigned routine", "routine_id", id)

	resp, err := h.service.GetRoutine(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
