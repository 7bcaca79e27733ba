package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metricqa/internal/config"
	"metricqa/internal/infrastructure"
)

const datasetCSV = `asset,time,PriceUSD,TxCnt
btc,2024-01-01,42000.5,300000
btc,2024-01-02,42500.5,-1
btc,2024-01-03,,
`

func setupTestConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()

	cfg := config.Default()
	cfg.Paths.BaseDir = base
	cfg.Server.Port = 0

	catalogPath := filepath.Join(base, cfg.Paths.CatalogFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(catalogPath), 0755))
	require.NoError(t, os.WriteFile(catalogPath, []byte("PriceUSD\nTxCnt\n"), 0644))
	return cfg
}

func newTestApplication(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	a, err := NewApplication(cfg, infrastructure.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { a.OTelProviders.Shutdown(context.Background()) })
	return a
}

func upload(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestNewApplication(t *testing.T) {
	cfg := setupTestConfig(t)
	a := newTestApplication(t, cfg)

	assert.NotNil(t, a.Router)
	assert.NotNil(t, a.Validation)
	assert.NotNil(t, a.Health)
	assert.Equal(t, ":0", a.Server.Addr)
	assert.Equal(t, cfg.Server.ReadTimeout, a.Server.ReadTimeout)
	assert.DirExists(t, a.Paths.ReportsDir)
	assert.DirExists(t, a.Paths.LogsDir)
}

func TestApplication_Routes(t *testing.T) {
	a := newTestApplication(t, setupTestConfig(t))

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantBody   string
	}{
		{"health", httptest.NewRequest(http.MethodGet, "/healthz", nil), http.StatusOK, `"status":"healthy"`},
		{"catalog", httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil), http.StatusOK, `"PriceUSD","TxCnt"`},
		{"validate", upload(t, "metrics.csv", datasetCSV), http.StatusOK, `"values_non_negative"`},
		{"unknown route", httptest.NewRequest(http.MethodGet, "/nope", nil), http.StatusNotFound, `"/errors/not-found"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.Router.ServeHTTP(rec, tt.req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestApplication_ValidateReportsFailure(t *testing.T) {
	a := newTestApplication(t, setupTestConfig(t))

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, upload(t, "metrics.csv", datasetCSV))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Summary struct {
			Failed int `json:"failed"`
		} `json:"summary"`
		Verdicts []struct {
			Check   string `json:"check"`
			Outcome string `json:"outcome"`
		} `json:"verdicts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Summary.Failed)

	var failed []string
	for _, v := range body.Verdicts {
		if v.Outcome == "fail" {
			failed = append(failed, v.Check)
		}
	}
	assert.Equal(t, []string{"values_non_negative"}, failed)
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	a := newTestApplication(t, setupTestConfig(t))

	a.Router.ServeHTTP(httptest.NewRecorder(), upload(t, "metrics.csv", datasetCSV))

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "metricqa_http_requests_total")
}

func TestApplication_MetricsDisabled(t *testing.T) {
	cfg := setupTestConfig(t)
	cfg.Telemetry.EnableMetrics = false
	a := newTestApplication(t, cfg)

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := setupTestConfig(t)
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	a := newTestApplication(t, cfg)

	first := httptest.NewRecorder()
	a.Router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))
	second := httptest.NewRecorder()
	a.Router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))
	health := httptest.NewRecorder()
	a.Router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestApplication_performStartupHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		a := newTestApplication(t, setupTestConfig(t))
		assert.NoError(t, a.performStartupHealthCheck(context.Background()))
	})

	t.Run("missing catalog", func(t *testing.T) {
		cfg := setupTestConfig(t)
		cfg.Paths.CatalogFile = "absent.txt"
		a := newTestApplication(t, cfg)

		err := a.performStartupHealthCheck(context.Background())
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "catalog:"))
	})
}

func TestApplication_StartStop(t *testing.T) {
	a := newTestApplication(t, setupTestConfig(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, a.Start(ctx, cancel))
	assert.NoError(t, a.Stop(context.Background()))
}
