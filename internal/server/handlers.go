package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/spacesedan/ideiamap/internal/ingest"
	"github.com/spacesedan/ideiamap/internal/mapview"
	"github.com/spacesedan/ideiamap/internal/models"
	"github.com/spacesedan/ideiamap/internal/store"
)

const sessionKey = "session"

type ErrorResponse struct {
	Error string `json:"error"`
}

type SessionResponse struct {
	ID uuid.UUID `json:"id"`
}

type IdeaRequest struct {
	Text string `json:"text"`
}

type IdeaResponse struct {
	Record            models.AnnotatedIdea `json:"record"`
	NeighborhoodFound bool                 `json:"neighborhood_found"`
}

type BatchResponse struct {
	Count   int                    `json:"count"`
	Records []models.AnnotatedIdea `json:"records"`
}

type ExportResponse struct {
	Sinks    []string `json:"sinks"`
	Exported int      `json:"exported"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Classifier string `json:"classifier"`
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Error: msg})
}

func (s *Server) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return jsonError(c, http.StatusBadRequest, "invalid session id")
		}
		session, err := s.registry.Get(id)
		if err != nil {
			return jsonError(c, http.StatusNotFound, err.Error())
		}
		c.Set(sessionKey, session)
		return next(c)
	}
}

func sessionFrom(c echo.Context) *store.Session {
	return c.Get(sessionKey).(*store.Session)
}

// Health handles GET /healthz
func (s *Server) Health(c echo.Context) error {
	classifier := "unknown"
	if s.healthy != nil {
		classifier = "unhealthy"
		if s.healthy.Load() {
			classifier = "healthy"
		}
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Classifier: classifier})
}

// CreateSession handles POST /api/v1/sessions
func (s *Server) CreateSession(c echo.Context) error {
	session := s.registry.Create()
	return c.JSON(http.StatusCreated, SessionResponse{ID: session.ID})
}

// DeleteSession handles DELETE /api/v1/sessions/:id
func (s *Server) DeleteSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid session id")
	}
	if err := s.registry.Delete(id); err != nil {
		return jsonError(c, http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// LoadBatch handles POST /api/v1/sessions/:id/batch
func (s *Server) LoadBatch(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "missing file field")
	}
	file, err := header.Open()
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "unreadable upload")
	}
	defer file.Close()

	records, err := sessionFrom(c).LoadBatchFile(c.Request().Context(), header.Filename, file, nil)
	switch {
	case errors.Is(err, ingest.ErrMissingTextColumn),
		errors.Is(err, ingest.ErrUnsupportedFormat),
		errors.Is(err, ingest.ErrEmptyFile):
		return jsonError(c, http.StatusBadRequest, err.Error())
	case err != nil:
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, BatchResponse{Count: len(records), Records: records})
}

// AddIdea handles POST /api/v1/sessions/:id/ideas
func (s *Server) AddIdea(c echo.Context) error {
	var req IdeaRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}

	record, err := sessionFrom(c).AddIndividual(c.Request().Context(), req.Text)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, IdeaResponse{
		Record:            record,
		NeighborhoodFound: record.HasNeighborhood(),
	})
}

// GetRecords handles GET /api/v1/sessions/:id/records
func (s *Server) GetRecords(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionFrom(c).AllRecords())
}

// ResetRecords handles DELETE /api/v1/sessions/:id/records
func (s *Server) ResetRecords(c echo.Context) error {
	sessionFrom(c).Reset()
	return c.NoContent(http.StatusNoContent)
}

// GetMarkers handles GET /api/v1/sessions/:id/markers
func (s *Server) GetMarkers(c echo.Context) error {
	return c.JSON(http.StatusOK, mapview.NewView(sessionFrom(c).AllRecords()))
}

// GetTable handles GET /api/v1/sessions/:id/table
func (s *Server) GetTable(c echo.Context) error {
	return c.JSON(http.StatusOK, mapview.Table(sessionFrom(c).AllRecords()))
}

// ExportRecords handles POST /api/v1/sessions/:id/export
func (s *Server) ExportRecords(c echo.Context) error {
	if s.exporter == nil || len(s.exporter.Sinks()) == 0 {
		return jsonError(c, http.StatusServiceUnavailable, "no export sinks configured")
	}

	records := sessionFrom(c).AllRecords()
	if err := s.exporter.Export(c.Request().Context(), records); err != nil {
		return jsonError(c, http.StatusBadGateway, err.Error())
	}

	return c.JSON(http.StatusOK, ExportResponse{
		Sinks:    s.exporter.Sinks(),
		Exported: len(records),
	})
}
