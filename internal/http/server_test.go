package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/contextrank/internal/language"
	"github.com/fyrsmithlabs/contextrank/internal/logging"
	"github.com/fyrsmithlabs/contextrank/internal/passage"
	"github.com/fyrsmithlabs/contextrank/internal/rankservice"
)

const catsAndDog = "A cat sat. A cat slept. A dog barked far away in the night."

func newService(t *testing.T, mutate func(*rankservice.Config)) *rankservice.Service {
	t.Helper()
	cfg := rankservice.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	svc, err := rankservice.New(cfg, language.Default(), nil, nil)
	require.NoError(t, err)
	return svc
}

// setupTestServer creates a test server with default configuration.
func setupTestServer(t *testing.T) *Server {
	t.Helper()
	server, err := NewServer(newService(t, nil), logging.NewNop(), nil)
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server := setupTestServer(t)
		assert.Equal(t, "127.0.0.1", server.config.Host)
		assert.Equal(t, 8420, server.config.Port)
		assert.Equal(t, 30*time.Second, server.config.RequestTimeout)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(newService(t, nil), nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when service is nil", func(t *testing.T) {
		_, err := NewServer(nil, logging.NewNop(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rank service cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleLanguages(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/languages", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp LanguagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Languages, len(language.Default().List()))
	assert.Equal(t, "de", resp.Languages[0].Code)
	assert.Equal(t, "German", resp.Languages[0].Name)
}

func TestHandleRankSentences(t *testing.T) {
	t.Run("selects central sentences", func(t *testing.T) {
		server := setupTestServer(t)
		rec := doJSON(t, server, http.MethodPost, "/api/v1/rank/sentences", map[string]interface{}{
			"text":      catsAndDog,
			"language":  "en",
			"separator": " | ",
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp rankservice.SentencesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "en", resp.Language)
		assert.Equal(t, []string{"A cat sat.", "A cat slept."}, resp.Sentences)
		assert.Equal(t, "A cat sat. | A cat slept.", resp.Joined)
		assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), resp.RequestID)
	})

	t.Run("empty text yields empty selection", func(t *testing.T) {
		server := setupTestServer(t)
		rec := doJSON(t, server, http.MethodPost, "/api/v1/rank/sentences", map[string]string{"text": ""})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp rankservice.SentencesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Sentences)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := setupTestServer(t)
		rec := doJSON(t, server, http.MethodPost, "/api/v1/rank/sentences", `{"text": `)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		server := setupTestServer(t)
		rec := doJSON(t, server, http.MethodPost, "/api/v1/rank/sentences", map[string]interface{}{
			"text":      catsAndDog,
			"threshold": 1.5,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Message, "invalid parameter")
	})

	t.Run("text too large", func(t *testing.T) {
		svc := newService(t, func(c *rankservice.Config) { c.MaxTextBytes = 16 })
		server, err := NewServer(svc, logging.NewNop(), nil)
		require.NoError(t, err)

		rec := doJSON(t, server, http.MethodPost, "/api/v1/rank/sentences", map[string]string{"text": catsAndDog})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestHandleRankContexts(t *testing.T) {
	t.Run("orders and annotates contexts", func(t *testing.T) {
		server := setupTestServer(t)
		rec := doJSON(t, server, http.MethodPost, "/api/v1/rank/contexts", map[string]interface{}{
			"language": "en",
			"contexts": []map[string]interface{}{
				{"text": "nothing happens", "position": 40},
				{"text": "It was a gleaming ring on her hand.", "position": 5, "term_frequency": 1, "word_count": 8},
			},
			"metadata": map[string]int{"current_index": 5},
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp rankservice.ContextsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Contexts, 2)
		assert.Equal(t, 5, resp.Contexts[0].Position)
		assert.Equal(t, 23.0, resp.Contexts[0].RankScore)
		assert.Equal(t, 1, resp.Contexts[0].RankOrder)
		assert.Equal(t, 1.0, resp.Contexts[0].RankWeight)
		assert.Equal(t, 0.5, resp.Contexts[1].RankWeight)
		assert.Equal(t, 6.0, resp.Contexts[0].FeatureScores[passage.FeatureProximity])
	})

	t.Run("unknown feature", func(t *testing.T) {
		server := setupTestServer(t)
		rec := doJSON(t, server, http.MethodPost, "/api/v1/rank/contexts", map[string]interface{}{
			"contexts": []map[string]interface{}{{"text": "x", "position": 1}},
			"features": map[string]bool{"sentiment": true},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too many contexts", func(t *testing.T) {
		svc := newService(t, func(c *rankservice.Config) { c.MaxContexts = 1 })
		server, err := NewServer(svc, logging.NewNop(), nil)
		require.NoError(t, err)

		rec := doJSON(t, server, http.MethodPost, "/api/v1/rank/contexts", map[string]interface{}{
			"contexts": []map[string]interface{}{{"text": "a"}, {"text": "b"}},
		})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{rankservice.ErrTextTooLarge, http.StatusRequestEntityTooLarge},
		{rankservice.ErrTooManyContexts, http.StatusRequestEntityTooLarge},
		{rankservice.ErrInvalidParameter, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{context.Canceled, http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		he, ok := toHTTPError(tt.err).(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, tt.code, he.Code, tt.err.Error())
	}
}

func TestMiddleware(t *testing.T) {
	t.Run("adds request ID to response", func(t *testing.T) {
		server := setupTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("request ID reaches the logger", func(t *testing.T) {
		log := logging.NewTestLogger()
		server, err := NewServer(newService(t, nil), log.Logger, nil)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(echo.HeaderXRequestID, "req-123")
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		log.AssertLogged(t, zapcore.InfoLevel, "http request")
		log.AssertField(t, "http request", "request.id", "req-123")
		log.AssertField(t, "http request", "route", "/health")
	})

	t.Run("recovers from panic", func(t *testing.T) {
		server := setupTestServer(t)
		server.echo.GET("/panic", func(c echo.Context) error {
			panic("test panic")
		})

		req := httptest.NewRequest(http.MethodGet, "/panic", nil)
		rec := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			server.echo.ServeHTTP(rec, req)
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("rate limits per client", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.RateLimit = 0.001
		cfg.RateBurst = 1
		server, err := NewServer(newService(t, nil), logging.NewNop(), cfg)
		require.NoError(t, err)

		codes := make([]int, 3)
		for i := range codes {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			server.echo.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
	})

	t.Run("body limit", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.BodyLimit = "1K"
		server, err := NewServer(newService(t, nil), logging.NewNop(), cfg)
		require.NoError(t, err)

		rec := doJSON(t, server, http.MethodPost, "/api/v1/rank/sentences", map[string]string{
			"text": strings.Repeat("word ", 400),
		})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestMetrics(t *testing.T) {
	server := setupTestServer(t)
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("/health", http.MethodGet, "200"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	server.echo.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("/health", http.MethodGet, "200"))
	assert.Equal(t, before+1, after)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "contextrank_http_requests_total")
}

func TestServerLifecycle(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Host = "localhost"
	cfg.Port = 0

	server, err := NewServer(newService(t, nil), logging.NewNop(), cfg)
	require.NoError(t, err)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(ctx))

	select {
	case err := <-errChan:
		assert.True(t, err == nil || err == http.ErrServerClosed)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}
