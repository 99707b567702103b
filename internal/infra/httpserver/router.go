package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/automaton-ux/internal/application/analysis"
	domai "github.com/bryanwahyu/automaton-ux/internal/domain/ai"
	domain "github.com/bryanwahyu/automaton-ux/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-ux/internal/middleware"
)

// multipart parts above this size spill to temp files
const multipartMemory = 32 << 20

// Analyzer runs one video analysis.
type Analyzer interface {
	Analyze(ctx context.Context, cmd appanalysis.AnalyzeCommand) (*appanalysis.AnalyzeResult, error)
}

type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64 // 0 = unlimited
	Checkers       map[string]middleware.HealthChecker
	Metrics        *middleware.Metrics
	Logger         *zap.Logger
}

type Router struct {
	analyzer Analyzer
	opts     Options
}

var (
	errBadUpload   = errors.New("invalid upload")
	errMissingFile = fmt.Errorf("%w: multipart field \"file\" is required", errBadUpload)
)

func NewRouter(analyzer Analyzer, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	r := &Router{analyzer: analyzer, opts: opts}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(corsOptions(opts.AllowedOrigins)))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(middleware.Logging(log))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opts.Checkers))
	mux.Get("/readyz", middleware.ReadinessHandler(opts.Checkers))
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics.Handler())
	}

	mux.Post("/analyze", r.wrap(r.handleAnalyze))

	return mux
}

// corsOptions allows every origin, method and header with credentials.
// "*" cannot be echoed when credentials are allowed, so the request
// origin is reflected instead.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	for _, o := range origins {
		if o == "*" {
			opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
			return opts
		}
	}
	opts.AllowedOrigins = origins
	return opts
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			middleware.RecordError(req, err)
			http.Error(w, err.Error(), statusFor(err))
		}
	}
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadUpload):
		return http.StatusBadRequest
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, domai.ErrAssetNotReady), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domai.ErrAssetFailed),
		errors.Is(err, domai.ErrEmptyResponse),
		errors.Is(err, domain.ErrMalformedResult):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type analyzeResponse struct {
	Result string `json:"result"`
}

// POST /analyze
// multipart/form-data, field "file" berisi video
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	if r.opts.MaxUploadBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxUploadBytes)
	}
	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("%w: %w", errBadUpload, err)
	}
	defer req.MultipartForm.RemoveAll()

	file, header, err := req.FormFile("file")
	if err != nil {
		return errMissingFile
	}
	defer file.Close()

	name := middleware.SanitizeFileName(header.Filename)
	br := bufio.NewReaderSize(file, 512)
	head, _ := br.Peek(512)
	mimeType := middleware.DetectVideoMIME(name, header.Header.Get("Content-Type"), head)

	res, err := r.analyzer.Analyze(req.Context(), appanalysis.AnalyzeCommand{
		Content:  br,
		FileName: name,
		MIMEType: mimeType,
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(analyzeResponse{Result: res.Raw})
}
