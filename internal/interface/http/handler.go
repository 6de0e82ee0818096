package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voyora/tripweaver/internal/domain/planner"
	"github.com/voyora/tripweaver/internal/domain/trip"
	apperrors "github.com/voyora/tripweaver/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	plannerSvc planner.Service
	catalog    trip.CatalogRepository
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(plannerSvc planner.Service, catalog trip.CatalogRepository, logger *slog.Logger) *Handler {
	return &Handler{
		plannerSvc: plannerSvc,
		catalog:    catalog,
		logger:     logger.With("component", "http.handler"),
	}
}

// GenerateRequest is the generate endpoint's payload. Candidate resources may
// be supplied inline or referenced by a stored catalog set name.
type GenerateRequest struct {
	Preferences trip.Preferences `json:"preferences"`
	Resources   *trip.Resources  `json:"resources,omitempty"`
	CatalogSet  string           `json:"catalogSet,omitempty"`
}

// Generate handles itinerary generation.
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	var res trip.Resources
	switch {
	case req.CatalogSet != "":
		stored, found, err := h.catalog.GetSet(c.Request.Context(), req.CatalogSet)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "catalog_error", errMessage(err), err))
			return
		}
		if !found {
			abortWithError(c, NewHTTPError(http.StatusNotFound, "catalog_set_not_found", "no candidate set named "+req.CatalogSet, nil))
			return
		}
		res = stored
	case req.Resources != nil:
		res = *req.Resources
	default:
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "either resources or catalogSet is required", nil))
		return
	}

	itin, err := h.plannerSvc.Generate(c.Request.Context(), req.Preferences, res)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case apperrors.IsCode(err, apperrors.CodeInvalidInput):
			status = http.StatusBadRequest
		case apperrors.IsCode(err, apperrors.CodeNoItinerary):
			status = http.StatusUnprocessableEntity
		}
		abortWithError(c, NewHTTPError(status, "generate_failed", errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, itin)
}

// SaveCatalogSet stores a named candidate set for later generate calls.
func (h *Handler) SaveCatalogSet(c *gin.Context) {
	name := c.Param("name")
	var res trip.Resources
	if err := c.ShouldBindJSON(&res); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if err := h.catalog.SaveSet(c.Request.Context(), name, res); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "catalog_error", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name})
}

// GetCatalogSet returns a stored candidate set.
func (h *Handler) GetCatalogSet(c *gin.Context) {
	name := c.Param("name")
	res, found, err := h.catalog.GetSet(c.Request.Context(), name)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "catalog_error", errMessage(err), err))
		return
	}
	if !found {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "catalog_set_not_found", "no candidate set named "+name, nil))
		return
	}
	c.JSON(http.StatusOK, res)
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
