package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/spacesedan/ideiamap/internal/annotation"
	"github.com/spacesedan/ideiamap/internal/export"
	"github.com/spacesedan/ideiamap/internal/geocode"
	"github.com/spacesedan/ideiamap/internal/mapview"
	"github.com/spacesedan/ideiamap/internal/models"
	"github.com/spacesedan/ideiamap/internal/neighborhood"
	"github.com/spacesedan/ideiamap/internal/sentiment"
	"github.com/spacesedan/ideiamap/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubModel struct{}

func (stubModel) Predict(_ context.Context, text string) (string, float64, error) {
	if strings.Contains(strings.ToLower(text), "adorei") {
		return "5 stars", 0.9, nil
	}
	return "2 stars", 0.6, nil
}

type stubGeocoder struct{}

func (stubGeocoder) Geocode(context.Context, string) (models.GeoPoint, error) {
	return models.NewGeoPoint(-27.59, -48.54), nil
}

type memorySink struct {
	records []models.AnnotatedIdea
}

func (m *memorySink) Name() string { return "memory" }

func (m *memorySink) Write(_ context.Context, records []models.AnnotatedIdea) error {
	m.records = append(m.records, records...)
	return nil
}

func newTestServer(t *testing.T, exporter *export.Exporter) *Server {
	t.Helper()
	annotator := annotation.NewAnnotator(
		sentiment.NewClassifier(stubModel{}, nil),
		neighborhood.NewFlorianopolisExtractor(),
		geocode.NewResolver(stubGeocoder{}, nil, geocode.Options{}),
	)
	registry := store.NewRegistry(func() (store.Annotator, error) { return annotator, nil })

	healthy := &atomic.Bool{}
	healthy.Store(true)
	return New(registry, exporter, healthy)
}

func do(t *testing.T, s *Server, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID.String()
}

func uploadBatch(t *testing.T, s *Server, id, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return do(t, s, http.MethodPost, "/api/v1/sessions/"+id+"/batch", body, writer.FormDataContentType())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/healthz", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "healthy", resp.Classifier)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBatchAndIndividualFlow(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s)

	rec := uploadBatch(t, s, id, "ideias.csv", "IDEIA\nMuito lixo na praia de Jurerê\nAdorei o novo parque no Centro\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var batch BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	require.Equal(t, 2, batch.Count)
	assert.Equal(t, models.SentimentNegative, batch.Records[0].Sentiment.Label)
	assert.Equal(t, "Jurerê", batch.Records[0].NeighborhoodName())
	assert.Equal(t, models.SentimentPositive, batch.Records[1].Sentiment.Label)
	assert.True(t, batch.Records[1].Location.Valid)

	rec = do(t, s, http.MethodPost, "/api/v1/sessions/"+id+"/ideas",
		bytes.NewBufferString(`{"text":"Faltam creches"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var idea IdeaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idea))
	assert.False(t, idea.NeighborhoodFound)
	assert.Equal(t, models.SourceIndividual, idea.Record.Idea.Source)

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+id+"/records", nil, "")
	var records []models.AnnotatedIdea
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 3)

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+id+"/markers", nil, "")
	var view mapview.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Len(t, view.Markers, 2)

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+id+"/table", nil, "")
	var rows []models.TableRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Len(t, rows, 3)

	rec = do(t, s, http.MethodDelete, "/api/v1/sessions/"+id+"/records", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+id+"/records", nil, "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestBatchMissingColumn(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s)

	rec := uploadBatch(t, s, id, "ideias.csv", "TEXTO\nalgo\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "IDEIA")
}

func TestBatchMissingFile(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s)

	rec := do(t, s, http.MethodPost, "/api/v1/sessions/"+id+"/batch", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownSession(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/sessions/"+uuid.NewString()+"/records", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/not-a-uuid/records", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/v1/sessions/"+id, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/v1/sessions/"+id, nil, "").Code)
}

func TestExport(t *testing.T) {
	sink := &memorySink{}
	s := newTestServer(t, export.NewExporter(10, sink))
	id := createSession(t, s)

	do(t, s, http.MethodPost, "/api/v1/sessions/"+id+"/ideas",
		bytes.NewBufferString(`{"text":"Adorei a feira no Centro"}`), "application/json")

	rec := do(t, s, http.MethodPost, "/api/v1/sessions/"+id+"/export", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"memory"}, resp.Sinks)
	assert.Equal(t, 1, resp.Exported)
	assert.Len(t, sink.records, 1)
}

func TestExportWithoutSinks(t *testing.T) {
	s := newTestServer(t, export.NewExporter(10))
	id := createSession(t, s)

	rec := do(t, s, http.MethodPost, "/api/v1/sessions/"+id+"/export", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
