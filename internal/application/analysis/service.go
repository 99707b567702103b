package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/automaton-ux/internal/application"
	domai "github.com/bryanwahyu/automaton-ux/internal/domain/ai"
	domain "github.com/bryanwahyu/automaton-ux/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-ux/internal/domain/upload"
)

const cleanupTimeout = 30 * time.Second

var errNoPrompt = errors.New("analysis prompt is not configured")

// Observer receives analysis metrics.
type Observer interface {
	AnalysisFinished(outcome string, d time.Duration)
	PollAttempts(n int)
}

// Service orchestrates one video analysis: scratch save, remote upload,
// readiness polling, generation, cleanup.
// Service is safe for concurrent use.
type Service struct {
	Scratch  upload.ScratchStore
	AI       domai.Client
	Clock    application.Clock
	Logger   *zap.Logger
	Observer Observer

	// Prompt is the instruction sent with every video.
	Prompt string

	PollInterval    time.Duration
	MaxPollAttempts int
	// Timeout bounds a whole Analyze call; 0 means only the caller's context applies.
	Timeout time.Duration
}

// AnalyzeCommand is one uploaded video.
type AnalyzeCommand struct {
	Content  io.Reader
	FileName string
	MIMEType string
}

// AnalyzeResult holds the cleaned model output and its parsed form.
type AnalyzeResult struct {
	RunID    string
	Raw      string
	Result   *domain.Result
	Warnings []string
}

// Analyze runs the full pipeline. The scratch file and the remote asset
// are released exactly once on every path after they were created.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (res *AnalyzeResult, err error) {
	runID := uuid.NewString()
	log := s.logger().With(zap.String("run_id", runID), zap.String("file_name", cmd.FileName))
	start := s.clock().Now()
	defer func() {
		s.observer().AnalysisFinished(outcome(err), s.clock().Now().Sub(start))
	}()

	if s.Prompt == "" {
		return nil, errNoPrompt
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	scratch, err := s.Scratch.Save(ctx, cmd.Content, cmd.FileName, cmd.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("save scratch file: %w", err)
	}
	log = log.With(zap.String("scratch_key", scratch.Key))
	log.Info("upload stored", zap.Int64("size", scratch.Size))
	defer s.releaseScratch(ctx, log, scratch)

	asset, err := s.uploadScratch(ctx, scratch)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("asset", asset.Name))
	log.Info("uploaded to remote", zap.String("state", string(asset.State)))
	defer s.releaseAsset(ctx, log, asset)

	asset, err = s.waitUntilActive(ctx, log, asset)
	if err != nil {
		return nil, err
	}

	text, err := s.AI.Generate(ctx, s.Prompt, asset)
	if err != nil {
		return nil, fmt.Errorf("generate analysis: %w", err)
	}

	cleaned := domain.StripCodeFence(text)
	parsed, err := domain.Parse(cleaned)
	if err != nil {
		log.Warn("model output rejected", zap.Error(err), zap.Int("length", len(cleaned)))
		return nil, err
	}

	warnings := parsed.Warnings()
	if len(warnings) > 0 {
		log.Warn("analysis outside documented enumerations", zap.Strings("warnings", warnings))
	}
	log.Info("analysis done",
		zap.Int("events", len(parsed.Events)),
		zap.Int("scenarios", len(parsed.Scenarios)),
	)

	return &AnalyzeResult{RunID: runID, Raw: cleaned, Result: parsed, Warnings: warnings}, nil
}

func (s *Service) uploadScratch(ctx context.Context, f *upload.ScratchFile) (*domai.Asset, error) {
	rc, err := s.Scratch.Open(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("open scratch file: %w", err)
	}
	defer rc.Close()

	asset, err := s.AI.UploadFile(ctx, rc, f.OriginalName, f.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("upload to remote: %w", err)
	}
	return asset, nil
}

// waitUntilActive re-fetches the asset until it is ACTIVE. It gives up
// on FAILED, after MaxPollAttempts fetches, or when ctx is done.
func (s *Service) waitUntilActive(ctx context.Context, log *zap.Logger, asset *domai.Asset) (*domai.Asset, error) {
	interval := s.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	attempts := 0
	defer func() { s.observer().PollAttempts(attempts) }()

	for {
		switch asset.State {
		case domai.AssetStateActive:
			log.Info("remote asset active", zap.Int("poll_attempts", attempts))
			return asset, nil
		case domai.AssetStateFailed:
			return nil, fmt.Errorf("%w: %s %s", domai.ErrAssetFailed, asset.Name, asset.Reason)
		}
		if s.MaxPollAttempts > 0 && attempts >= s.MaxPollAttempts {
			return nil, fmt.Errorf("%w: %s still %s after %d polls", domai.ErrAssetNotReady, asset.Name, asset.State, attempts)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", domai.ErrAssetNotReady, asset.Name, ctx.Err())
		case <-s.clock().After(interval):
		}

		attempts++
		next, err := s.AI.GetFile(ctx, asset.Name)
		if err != nil {
			return nil, fmt.Errorf("poll remote asset: %w", err)
		}
		log.Debug("polled remote asset", zap.Int("attempt", attempts), zap.String("state", string(next.State)))
		asset = next
	}
}

func (s *Service) releaseScratch(ctx context.Context, log *zap.Logger, f *upload.ScratchFile) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.Scratch.Remove(cctx, f); err != nil {
		log.Warn("failed to remove scratch file", zap.Error(err))
	}
}

func (s *Service) releaseAsset(ctx context.Context, log *zap.Logger, a *domai.Asset) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.AI.DeleteFile(cctx, a.Name); err != nil {
		log.Warn("failed to delete remote asset", zap.Error(err))
	}
}

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) observer() Observer {
	if s.Observer == nil {
		return noopObserver{}
	}
	return s.Observer
}

type noopObserver struct{}

func (noopObserver) AnalysisFinished(string, time.Duration) {}
func (noopObserver) PollAttempts(int)                       {}

// outcome labels an Analyze result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domai.ErrAssetNotReady), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, domai.ErrAssetFailed):
		return "asset_failed"
	case errors.Is(err, domai.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, domai.ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, domain.ErrMalformedResult):
		return "malformed_result"
	default:
		return "error"
	}
}
