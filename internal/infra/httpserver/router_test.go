package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	appanalysis "github.com/bryanwahyu/automaton-ux/internal/application/analysis"
	domai "github.com/bryanwahyu/automaton-ux/internal/domain/ai"
	domain "github.com/bryanwahyu/automaton-ux/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-ux/internal/middleware"
)

type fakeAnalyzer struct {
	mu    sync.Mutex
	calls []appanalysis.AnalyzeCommand
	body  []string
	raw   string
	err   error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, cmd appanalysis.AnalyzeCommand) (*appanalysis.AnalyzeResult, error) {
	b, _ := io.ReadAll(cmd.Content)
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.body = append(f.body, string(b))
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &appanalysis.AnalyzeResult{Raw: f.raw}, nil
}

func uploadRequest(t *testing.T, field, fileName, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, fileName))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestRouter(t *testing.T, a Analyzer, opts Options) http.Handler {
	opts.Logger = zaptest.NewLogger(t)
	return NewRouter(a, opts)
}

func TestAnalyze_OK(t *testing.T) {
	raw := `{"events":[],"scenarios":{"baseline":{"score":70,"risk":"medium"}},"recommendation":[]}`
	fa := &fakeAnalyzer{raw: raw}
	h := newTestRouter(t, fa, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "file", "../clips/session.webm", "video/webm", []byte("video-data")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, map[string]string{"result": raw}, body)

	require.Len(t, fa.calls, 1)
	assert.Equal(t, "session.webm", fa.calls[0].FileName)
	assert.Equal(t, "video/webm", fa.calls[0].MIMEType)
	assert.Equal(t, "video-data", fa.body[0])
}

func TestAnalyze_BadRequests(t *testing.T) {
	fa := &fakeAnalyzer{}
	h := newTestRouter(t, fa, Options{})

	t.Run("wrong field", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, uploadRequest(t, "video", "a.mp4", "video/mp4", []byte("x")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"decision":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	assert.Empty(t, fa.calls)
}

func TestAnalyze_UploadTooLarge(t *testing.T) {
	fa := &fakeAnalyzer{}
	h := newTestRouter(t, fa, Options{MaxUploadBytes: 1024})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "file", "big.mp4", "video/mp4", bytes.Repeat([]byte{1}, 4096)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, fa.calls)
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "quota", err: fmt.Errorf("generate analysis: %w", domai.ErrQuotaExceeded), status: http.StatusTooManyRequests},
		{name: "not ready", err: fmt.Errorf("%w: files/x", domai.ErrAssetNotReady), status: http.StatusGatewayTimeout},
		{name: "asset failed", err: domai.ErrAssetFailed, status: http.StatusBadGateway},
		{name: "empty response", err: domai.ErrEmptyResponse, status: http.StatusBadGateway},
		{name: "malformed", err: fmt.Errorf("%w: missing \"events\"", domain.ErrMalformedResult), status: http.StatusBadGateway},
		{name: "deadline during generation", err: fmt.Errorf("generate analysis: %w", context.DeadlineExceeded), status: http.StatusGatewayTimeout},
		{name: "other", err: errors.New("disk full"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &fakeAnalyzer{err: tt.err}, Options{})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, uploadRequest(t, "file", "a.mp4", "video/mp4", []byte("x")))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.err.Error())
		})
	}
}

func TestAnalyze_ServerErrorLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewRouter(&fakeAnalyzer{err: errors.New("disk full")}, Options{Logger: zap.New(core)})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "file", "a.mp4", "video/mp4", []byte("x")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "disk full", entry.ContextMap()["error"])
	assert.EqualValues(t, http.StatusInternalServerError, entry.ContextMap()["status"])
}

func TestCORS(t *testing.T) {
	h := newTestRouter(t, &fakeAnalyzer{}, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "X-Custom-Header")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	h := newTestRouter(t, &fakeAnalyzer{}, Options{AllowedOrigins: []string{"https://ux.example.com"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestReadyz_FailingDependency(t *testing.T) {
	h := newTestRouter(t, &fakeAnalyzer{}, Options{
		Checkers: map[string]middleware.HealthChecker{
			"scratch": middleware.HealthCheckFunc(func(context.Context) error { return nil }),
			"ai":      middleware.HealthCheckFunc(func(context.Context) error { return errors.New("invalid api key") }),
		},
	})

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "invalid api key", path)
	}
}

func TestOperationalRoutes(t *testing.T) {
	h := newTestRouter(t, &fakeAnalyzer{}, Options{
		Metrics: middleware.NewMetrics(),
		Checkers: map[string]middleware.HealthChecker{
			"scratch": middleware.HealthCheckFunc(func(context.Context) error { return nil }),
		},
	})

	for path, want := range map[string]int{
		"/health":  http.StatusOK,
		"/healthz": http.StatusOK,
		"/readyz":  http.StatusOK,
		"/metrics": http.StatusOK,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "ok", rec.Body.String())
}
