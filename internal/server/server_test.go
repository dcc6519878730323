package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gavl-predictor/internal/common/config"
	"gavl-predictor/internal/common/logger"
	"gavl-predictor/internal/ensemble"
	"gavl-predictor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type failingPredictor struct{}

func (failingPredictor) Predict(context.Context, models.CaseInput) (*models.PredictionResponse, error) {
	return nil, stderrors.New("ensemble exploded")
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{Port: 8080, Mode: "test", CORSOrigins: []string{"*"}}
}

func createTestServer(t *testing.T, p Predictor, opts ...Option) *Server {
	t.Helper()
	if p == nil {
		p = ensemble.NewPredictor(logger.NewNoOpLogger(),
			ensemble.WithClock(func() time.Time { return testNow }))
	}
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(testServerConfig(), p, logger.NewTestLogger(t), opts...)
}

func do(t *testing.T, s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// ==========================
// POST /api/predict
// ==========================

func TestPredict_Success(t *testing.T) {
	s := createTestServer(t, nil)

	body := `{"case_id":"TEST-001","case_name":"Doe v. State","issue_area":"civil_rights",` +
		`"opinion_text":"This case involves strong evidence of constitutional violations. Clear facts support the petitioner."}`
	rec := do(t, s, http.MethodPost, "/api/predict", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.PredictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "TEST-001", resp.CaseID)
	assert.Equal(t, "petitioner_wins", resp.PredictedOutcome)
	assert.Equal(t, 1.0, resp.Probability)
	assert.InDelta(t, 0.688, resp.Confidence, 1e-9)
	assert.Equal(t, 5, resp.AgreeingModels)
	assert.Len(t, resp.ModelPredictions, 5)
	assert.Equal(t, "evidence", resp.ModelPredictions[0].ModelName)
	assert.Equal(t, 0.85, resp.ModelPredictions[0].Probability)
	assert.Equal(t, "TEST-001_1709294400000", resp.RequestID)
	assert.Equal(t, "2024-03-01T12:00:00Z", resp.Timestamp)
	assert.Contains(t, resp.Reasoning, "5 out of 5 models agreed")

	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestPredict_DefaultsForMissingIdentifiers(t *testing.T) {
	s := createTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/predict", `{"case_id":null,"opinion_text":""}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.PredictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UNKNOWN", resp.CaseID)
	assert.Equal(t, "Unknown Case", resp.CaseName)
	assert.Equal(t, "general", resp.IssueArea)
	assert.Equal(t, "respondent_wins", resp.PredictedOutcome)
	assert.InDelta(t, 0.8, resp.ModelAgreement, 1e-9)
	assert.True(t, strings.HasPrefix(resp.RequestID, "UNKNOWN_"))
}

func TestPredict_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"empty body", "", "CASE_VALIDATION_FAILED"},
		{"malformed json", `{"case_id":`, "PARSE_ERROR"},
		{"wrong type", `{"opinion_text":42}`, "CASE_VALIDATION_FAILED"},
		{"array body", `[]`, "CASE_VALIDATION_FAILED"},
	}

	s := createTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/predict", tt.body, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "Invalid case payload", body.Message)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestPredict_WrongTypeListsFields(t *testing.T) {
	s := createTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/predict", `{"case_name":false}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Details, 1)
	assert.True(t, strings.HasPrefix(body.Details[0], "case_name:"))
}

func TestPredict_PredictorFailure(t *testing.T) {
	s := createTestServer(t, failingPredictor{})

	rec := do(t, s, http.MethodPost, "/api/predict", `{"opinion_text":"x"}`, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Prediction failed", body.Message)
	assert.Equal(t, "ensemble exploded", body.Error)
}

// ==========================
// Middleware
// ==========================

func TestRequestID_Propagated(t *testing.T) {
	s := createTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/health", "", map[string]string{requestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCORS_Preflight(t *testing.T) {
	s := createTestServer(t, nil)

	rec := do(t, s, http.MethodOptions, "/api/predict", "", map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	rec = do(t, s, http.MethodOptions, "/api/predict", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	cfg := testServerConfig()
	cfg.CORSOrigins = []string{"https://app.example.com"}
	s := New(cfg, failingPredictor{}, logger.NewNoOpLogger())

	rec := do(t, s, http.MethodOptions, "/api/predict", "", map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, s, http.MethodOptions, "/api/predict", "", map[string]string{
		"Origin":                        "https://evil.example.com",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// ==========================
// Health, readiness, metrics
// ==========================

func TestHealth(t *testing.T) {
	s := createTestServer(t, nil, WithAppInfo(config.AppConfig{Name: "gavl-predictor", Version: "1.2.3"}))
	rec := do(t, s, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestReady(t *testing.T) {
	s := createTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s = createTestServer(t, nil,
		WithReadinessCheck("zeebe", func(context.Context) error { return stderrors.New("gateway unavailable") }))
	rec = do(t, s, http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "gateway unavailable", body.Checks["zeebe"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := createTestServer(t, nil)
	do(t, s, http.MethodPost, "/api/predict", `{}`, nil)

	rec := do(t, s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	s = createTestServer(t, nil, WithMetricsPath(""))
	rec = do(t, s, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
