package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-routine-api/internal/dto"
	"github.com/noah-isme/class-routine-api/internal/models"
	"github.com/noah-isme/class-routine-api/internal/service"
	appErrors "github.com/noah-isme/class-routine-api/pkg/errors"
	"github.com/noah-isme/class-routine-api/pkg/response"
)

type teacherPreferenceManager interface {
	List(ctx context.Context, teacherID, academicYear string) ([]models.TeacherPreference, error)
	Replace(ctx context.Context, teacherID string, req dto.ReplacePreferencesRequest) ([]models.TeacherPreference, error)
}

// TeacherPreferenceHandler exposes a teacher's slot preferences.
type TeacherPreferenceHandler struct {
	service teacherPreferenceManager
}

// NewTeacherPreferenceHandler constructs the handler.
func NewTeacherPreferenceHandler(svc *service.TeacherPreferenceService) *TeacherPreferenceHandler {
	return &TeacherPreferenceHandler{service: svc}
}

// List godoc
// @Summary List a teacher's slot preferences
// @Tags Preferences
// @Produce json
// @Param id path string true "Teacher ID"
// @Param academic_year query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/preferences [get]
func (h *TeacherPreferenceHandler) List(c *gin.Context) {
	prefs, err := h.service.List(c.Request.Context(), c.Param("id"), c.Query("academic_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs)
}

// Replace godoc
// @Summary Replace a teacher's slot preferences for a year
// @Description Slots left out of the payload fall back to LOW.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body dto.ReplacePreferencesRequest true "Preferences"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/preferences [put]
func (h *TeacherPreferenceHandler) Replace(c *gin.Context) {
	var req dto.ReplacePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid preference payload"))
		return
	}
	prefs, err := h.service.Replace(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs)
}
