package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/config"
	deliveryhttp "github.com/postcode-finder/internal/delivery/http"
	"github.com/postcode-finder/internal/delivery/http/handler"
	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/eligibility"
	"github.com/postcode-finder/internal/pkg/metrics"
	"github.com/postcode-finder/internal/usecase"
)

type staticSource struct {
	fc *domain.FeatureCollection
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) Fetch(ctx context.Context) (*domain.FeatureCollection, error) {
	return s.fc, nil
}

const testGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"POA_CODE21": "3550"},
     "geometry": {"type": "Polygon", "coordinates": [[[144.1,-36.6],[144.5,-36.6],[144.5,-37.0],[144.1,-37.0],[144.1,-36.6]]]}},
    {"type": "Feature", "properties": {"POA_CODE21": "3000"},
     "geometry": {"type": "Polygon", "coordinates": [[[144.93,-37.78],[145.0,-37.78],[145.0,-37.85],[144.93,-37.85],[144.93,-37.78]]]}}
  ]
}`

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T, load bool, checks map[string]handler.HealthCheck) *deliveryhttp.Server {
	t.Helper()

	var fc domain.FeatureCollection
	require.NoError(t, json.Unmarshal([]byte(testGeoJSON), &fc))

	logger := zap.NewNop()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	classifier := eligibility.NewClassifier(domain.VictoriaRuleTables())
	uc := usecase.NewPostcodeFinderUseCase(classifier, staticSource{fc: &fc}, m, logger)
	if load {
		_, err := uc.Reload(context.Background(), false)
		require.NoError(t, err)
	}

	cfg := &config.Config{Server: config.ServerConfig{CORSOrigins: "*"}}
	return deliveryhttp.NewServer(cfg, logger, registry, m,
		handler.NewPostcodeHandler(uc, logger),
		handler.NewDatasetHandler(uc, checks, logger),
	)
}

func do(t *testing.T, s *deliveryhttp.Server, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, &env), string(body))
	}
	return resp.StatusCode, env
}

func TestServer_Shapes(t *testing.T) {
	s := newTestServer(t, true, nil)

	status, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/shapes", nil))
	require.Equal(t, http.StatusOK, status)
	var shapes []domain.RenderShape
	require.NoError(t, json.Unmarshal(env.Data, &shapes))
	assert.Len(t, shapes, 2)
	assert.Equal(t, "all", env.Meta["filter"])

	status, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/shapes?filter=visa491", nil))
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &shapes))
	require.Len(t, shapes, 1)
	assert.Equal(t, domain.StyleVisa491Filter.FillColor, shapes[0].FillColor)

	status, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/shapes?filter=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_FILTER", env.Error.Code)
}

func TestServer_NotLoaded(t *testing.T) {
	s := newTestServer(t, false, nil)

	status, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=3550", nil))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DATASET_NOT_LOADED", env.Error.Code)

	status, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"loaded": false}`, string(env.Data))
}

func TestServer_ShapeEligibility(t *testing.T) {
	s := newTestServer(t, true, nil)

	status, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/shapes/3550/eligibility", nil))
	require.Equal(t, http.StatusOK, status)
	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "3550", body["shape_id"])
	assert.Equal(t, "both", body["category"])

	status, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/shapes/1234/eligibility", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SHAPE_NOT_FOUND", env.Error.Code)
}

func TestServer_Eligibility(t *testing.T) {
	s := newTestServer(t, false, nil)

	status, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/eligibility/3098", nil))
	require.Equal(t, http.StatusOK, status)
	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "visa491", body["category"])
	assert.Equal(t, "✅ 491 visa\n", body["message"])

	status, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/eligibility/abc", nil))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_POSTCODE", env.Error.Code)
}

func TestServer_Search(t *testing.T) {
	s := newTestServer(t, true, nil)

	status, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=Bendigo", nil))
	require.Equal(t, http.StatusOK, status)
	var result domain.SearchResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, domain.SearchKindSample, result.Kind)
	assert.Equal(t, "3550", result.Postcode)

	status, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=3999", nil))
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, domain.SearchKindRaw, result.Kind)

	status, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=", nil))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "EMPTY_QUERY", env.Error.Code)
}

func TestServer_Locate(t *testing.T) {
	s := newTestServer(t, true, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/locate", bytes.NewBufferString(`{"latitude": -36.75, "longitude": 144.28}`))
	req.Header.Set("Content-Type", "application/json")
	status, env := do(t, s, req)
	require.Equal(t, http.StatusOK, status)
	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "3550", body["postcode"])
	assert.Equal(t, "shape", body["source"])
	assert.Equal(t, true, body["eligible"])

	req = httptest.NewRequest(http.MethodPost, "/api/v1/locate", bytes.NewBufferString(`{"latitude": -120, "longitude": 144.28}`))
	req.Header.Set("Content-Type", "application/json")
	status, env = do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_COORDINATES", env.Error.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/locate", bytes.NewBufferString(`{"longitude": 144.28}`))
	req.Header.Set("Content-Type", "application/json")
	status, _ = do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_Reload(t *testing.T) {
	s := newTestServer(t, false, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dataset/reload", bytes.NewBufferString(`{"force": true}`))
	req.Header.Set("Content-Type", "application/json")
	status, env := do(t, s, req)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "static", env.Meta["source"])

	status, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil))
	require.Equal(t, http.StatusOK, status)
	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, true, body["loaded"])
	assert.Equal(t, float64(2), body["shape_count"])

	// no stream configured
	req = httptest.NewRequest(http.MethodPost, "/api/v1/dataset/reload", bytes.NewBufferString(`{"async": true}`))
	req.Header.Set("Content-Type", "application/json")
	status, env = do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, true, map[string]handler.HealthCheck{
		"redis": func(ctx context.Context) error { return nil },
	})
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	s = newTestServer(t, true, map[string]handler.HealthCheck{
		"postgres": func(ctx context.Context) error { return errors.New("refused") },
	})
	resp, err = s.App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_MetricsAndNotFound(t *testing.T) {
	s := newTestServer(t, true, nil)

	status, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil))
	require.Equal(t, http.StatusOK, status)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "postcode_http_requests_total")

	status, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
