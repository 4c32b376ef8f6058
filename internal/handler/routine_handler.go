package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-routine-api/internal/dto"
	"github.com/noah-isme/class-routine-api/internal/middleware"
	"github.com/noah-isme/class-routine-api/internal/models"
	"github.com/noah-isme/class-routine-api/internal/service"
	appErrors "github.com/noah-isme/class-routine-api/pkg/errors"
	"github.com/noah-isme/class-routine-api/pkg/response"
)

type routineGenerator interface {
	Generate(ctx context.Context, req dto.GenerateRoutineRequest, triggeredBy string) (*dto.GenerateRoutineResponse, error)
	GenerateAsync(ctx context.Context, req dto.GenerateRoutineRequest, triggeredBy string) (*dto.GenerateRoutineAccepted, error)
	Grid(ctx context.Context, academicYear string, query dto.RoutineGridQuery) (*dto.RoutineGridResponse, bool, error)
	Export(ctx context.Context, academicYear, format string, query dto.RoutineGridQuery) ([]byte, string, string, error)
	ListSessions(ctx context.Context, academicYear string, limit int) ([]models.RoutineSession, error)
	GetSession(ctx context.Context, id string) (*models.RoutineSession, error)
}

// RoutineHandler exposes routine generation and viewing endpoints.
type RoutineHandler struct {
	service routineGenerator
}

// NewRoutineHandler constructs the handler.
func NewRoutineHandler(svc *service.RoutineGeneratorService) *RoutineHandler {
	return &RoutineHandler{service: svc}
}

// Generate godoc
// @Summary Generate the weekly routine of an academic year
// @Description Clears the year's routine and places every active course assignment. Partial routines still return 200; inspect skipped.
// @Tags Routines
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRoutineRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /routines/generate [post]
func (h *RoutineHandler) Generate(c *gin.Context) {
	var req dto.GenerateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// GenerateAsync godoc
// @Summary Queue a routine generation run
// @Tags Routines
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRoutineRequest true "Generation payload"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /routines/generate/async [post]
func (h *RoutineHandler) GenerateAsync(c *gin.Context) {
	var req dto.GenerateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid generate payload"))
		return
	}
	accepted, err := h.service.GenerateAsync(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, accepted)
}

// Grid godoc
// @Summary Weekly routine grid
// @Tags Routines
// @Produce json
// @Param year path string true "Academic year"
// @Param semester query int false "Semester"
// @Param section query string false "Section letter"
// @Param teacher_id query string false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /routines/{year} [get]
func (h *RoutineHandler) Grid(c *gin.Context) {
	query, err := bindGridQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	grid, cached, err := h.service.Grid(c.Request.Context(), c.Param("year"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, grid, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the routine as CSV or PDF
// @Tags Routines
// @Produce text/csv
// @Produce application/pdf
// @Param year path string true "Academic year"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Param semester query int false "Semester"
// @Param section query string false "Section letter"
// @Param teacher_id query string false "Teacher ID"
// @Success 200 {file} file
// @Router /routines/{year}/export [get]
func (h *RoutineHandler) Export(c *gin.Context) {
	query, err := bindGridQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, contentType, name, err := h.service.Export(c.Request.Context(), c.Param("year"), c.Query("format"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, contentType, name, payload)
}

// Sessions godoc
// @Summary List generation runs of an academic year
// @Tags Routines
// @Produce json
// @Param year path string true "Academic year"
// @Param limit query int false "Max runs (default 20)"
// @Success 200 {object} response.Envelope
// @Router /routines/{year}/sessions [get]
func (h *RoutineHandler) Sessions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	sessions, err := h.service.ListSessions(c.Request.Context(), c.Param("year"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions)
}

// Session godoc
// @Summary Get one generation run with its report
// @Tags Routines
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /routines/sessions/{id} [get]
func (h *RoutineHandler) Session(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

func bindGridQuery(c *gin.Context) (dto.RoutineGridQuery, error) {
	var query dto.RoutineGridQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return query, appErrors.Validation(err, "invalid routine filter")
	}
	return query, nil
}
