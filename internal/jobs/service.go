package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"journey-backend/internal/diagram"
	"journey-backend/internal/extract"
	"journey-backend/internal/llm"
	"journey-backend/internal/queue"
	"journey-backend/internal/shared/metrics"
	"journey-backend/internal/shared/storage/object"
	"journey-backend/internal/shared/telemetry"
)

const (
	MaxImages           = 8
	MaxImageBytes       = 10 << 20
	MaxTranscriptLength = 200_000

	imageLoadConcurrency = 4
	defaultListLimit     = 20
	maxListLimit         = 100
)

// Service starts jobs and drives them to a terminal state.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	LLM   llm.Client
	// Queue, when set, hands processing to a worker instead of a local goroutine.
	Queue queue.Client
	// Inline runs processing before Start returns when no Queue is set. Runtimes that freeze the
	// instance once the response is written (Cloud Functions) cannot rely on a goroutine.
	Inline bool
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Start validates the input, records a processing job and dispatches it. A dispatch failure marks
// the job failed and is returned as ErrDispatchFailed along with the stored job. With Inline set
// the returned job is already terminal.
func (s *Service) Start(ctx context.Context, userID, jobType string, input json.RawMessage) (Job, error) {
	if strings.TrimSpace(userID) == "" {
		return Job{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	normalized, err := ValidateInput(jobType, input)
	if err != nil {
		return Job{}, err
	}

	job := Job{
		ID:        uuid.NewString(),
		UserID:    userID,
		JobType:   jobType,
		Status:    StatusProcessing,
		InputData: normalized,
		CreatedAt: s.now(),
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}
	metrics.IncJobStarted(jobType)
	telemetry.Info("job.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"job_id":            job.ID,
		"job_type":          jobType,
		"status":            StatusProcessing,
		"status_transition": "->processing",
	})

	if s.Queue == nil {
		if !s.Inline {
			go s.processAsync(backgroundWithRequestID(ctx), job.ID)
			return job, nil
		}
		s.processAsync(backgroundWithRequestID(ctx), job.ID)
		if done, err := s.Repo.Get(context.Background(), job.ID); err == nil {
			job = done
		}
		return job, nil
	}

	msg := queue.Message{
		JobID:      job.ID,
		RequestID:  requestIDFromContext(ctx),
		EnqueuedAt: s.now().Format(time.RFC3339),
		Version:    1,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		dispatchErr := fmt.Errorf("dispatch: %w", err)
		s.failJob(ctx, job, dispatchErr, nil)
		if failed, getErr := s.Repo.Get(context.Background(), job.ID); getErr == nil {
			job = failed
		}
		return job, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	return job, nil
}

// Get returns the job when it belongs to userID. Jobs of other users look missing.
func (s *Service) Get(ctx context.Context, userID, jobID string) (Job, error) {
	job, err := s.Repo.Get(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if job.UserID != userID {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// List returns the user's jobs, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Job, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) processAsync(ctx context.Context, jobID string) {
	if err := s.Process(ctx, jobID); err != nil {
		telemetry.Error("job.process_error", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"job_id":     jobID,
			"error":      sanitizeError(err),
		})
	}
}

// Process runs a processing job to completion or failure. Jobs that already left processing are
// skipped, so redelivered queue messages are harmless. The returned error is non-nil only when the
// outcome could not be recorded.
func (s *Service) Process(ctx context.Context, jobID string) (err error) {
	job, err := s.Repo.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("job lookup id=%s: %w", jobID, err)
	}
	if job.Status != StatusProcessing {
		telemetry.Info("job.skip", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"job_id":     job.ID,
			"status":     job.Status,
		})
		return nil
	}

	startedAt := s.now()
	defer func() {
		if r := recover(); r != nil {
			err = s.failJob(ctx, job, fmt.Errorf("panic: %v", r), &startedAt)
		}
	}()

	result, runErr := s.run(ctx, job)
	if runErr != nil {
		return s.failJob(ctx, job, runErr, &startedAt)
	}
	payload, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return s.failJob(ctx, job, fmt.Errorf("encode result: %w", marshalErr), &startedAt)
	}

	completedAt := s.now()
	if err := s.Repo.MarkCompleted(ctx, job.ID, payload, completedAt); err != nil {
		if errors.Is(err, ErrNotProcessing) {
			return nil
		}
		return s.failJob(ctx, job, fmt.Errorf("storage: save result: %w", err), &startedAt)
	}
	metrics.IncJobCompleted(job.JobType)
	metrics.ObserveJobDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("job.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           job.UserID,
		"job_id":            job.ID,
		"job_type":          job.JobType,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"nodes":             len(result.Nodes),
		"edges":             len(result.Edges),
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
	return nil
}

func (s *Service) run(ctx context.Context, job Job) (diagram.Diagram, error) {
	if s.LLM == nil {
		return diagram.Diagram{}, fmt.Errorf("%w: missing llm client", errMissingDeps)
	}

	var (
		req llm.Request
		err error
	)
	switch job.JobType {
	case TypeTranscript:
		req, err = s.transcriptRequest(ctx, job)
	case TypeDiagram:
		req, err = s.diagramRequest(ctx, job)
	default:
		err = fmt.Errorf("%w: %q", errUnsupportedType, job.JobType)
	}
	if err != nil {
		return diagram.Diagram{}, err
	}

	requestID := requestIDFromContext(ctx)
	client := llm.WithRetry(s.LLM, func(err error) {
		metrics.IncLLMRetries()
		telemetry.Warn("job.llm_retry", map[string]any{
			"request_id": requestID,
			"job_id":     job.ID,
			"error":      sanitizeError(err),
		})
	})
	text, err := client.Complete(ctx, req)
	if err != nil {
		return diagram.Diagram{}, fmt.Errorf("llm complete: %w", err)
	}
	d, err := diagram.FromText(text)
	if err != nil {
		return diagram.Diagram{}, fmt.Errorf("llm output invalid: %w", err)
	}
	return d, nil
}

func (s *Service) transcriptRequest(ctx context.Context, job Job) (llm.Request, error) {
	var in TranscriptInput
	if err := json.Unmarshal(job.InputData, &in); err != nil {
		return llm.Request{}, fmt.Errorf("%w: decode input: %v", ErrInvalidInput, err)
	}
	text := strings.TrimSpace(in.Transcript)
	if text == "" {
		if s.Store == nil {
			return llm.Request{}, fmt.Errorf("%w: missing object store", errMissingDeps)
		}
		extracted, err := extract.ExtractText(ctx, s.Store, in.DocumentKey, in.MimeType)
		if err != nil {
			return llm.Request{}, fmt.Errorf("document extract: %w", err)
		}
		text = extracted
	}

	prompt, err := llm.LoadPrompt(llm.PromptTranscriptToDiagram)
	if err != nil {
		return llm.Request{}, err
	}
	return prompt.Request(map[string]string{
		"title":      in.Title,
		"transcript": text,
	}), nil
}

func (s *Service) diagramRequest(ctx context.Context, job Job) (llm.Request, error) {
	var in DiagramInput
	if err := json.Unmarshal(job.InputData, &in); err != nil {
		return llm.Request{}, fmt.Errorf("%w: decode input: %v", ErrInvalidInput, err)
	}
	if s.Store == nil {
		return llm.Request{}, fmt.Errorf("%w: missing object store", errMissingDeps)
	}
	images, err := loadImages(ctx, s.Store, in.ImageKeys)
	if err != nil {
		return llm.Request{}, err
	}

	prompt, err := llm.LoadPrompt(llm.PromptScreenshotsToDiagram)
	if err != nil {
		return llm.Request{}, err
	}
	req := prompt.Request(map[string]string{"notes": in.Notes})
	req.Images = images
	return req, nil
}

// loadImages reads the screenshots concurrently and keeps them in key order.
func loadImages(ctx context.Context, store object.ObjectStore, keys []string) ([]llm.Image, error) {
	images := make([]llm.Image, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imageLoadConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			data, err := object.ReadAll(gctx, store, key, MaxImageBytes)
			if err != nil {
				return fmt.Errorf("storage: read image %s: %w", key, err)
			}
			mimeType := http.DetectContentType(data)
			if !strings.HasPrefix(mimeType, "image/") {
				return fmt.Errorf("%w: %s is not an image (%s)", ErrInvalidInput, key, mimeType)
			}
			images[i] = llm.Image{MIMEType: mimeType, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// failJob records err on the job. It returns an error only when the failure itself could not be stored.
func (s *Service) failJob(ctx context.Context, job Job, err error, startedAt *time.Time) error {
	code, retryable := classifyFailure(err)
	msg := sanitizeError(err)
	completedAt := s.now()
	if updateErr := s.Repo.MarkFailed(context.Background(), job.ID, code, msg, completedAt); updateErr != nil {
		if errors.Is(updateErr, ErrNotProcessing) {
			return nil
		}
		telemetry.Error("job.fail_record_error", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"job_id":     job.ID,
			"error":      updateErr.Error(),
			"cause":      msg,
		})
		return fmt.Errorf("record failure for job %s: %w", job.ID, updateErr)
	}
	metrics.IncJobFailed(job.JobType)
	if startedAt != nil {
		metrics.ObserveJobDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("job.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           job.UserID,
		"job_id":            job.ID,
		"job_type":          job.JobType,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        code,
		"retryable":         retryable,
		"duration_ms":       durationMs(startedAt, &completedAt),
	})
	return nil
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) (string, bool) {
	switch {
	case err == nil:
		return ErrorCodeInternal, false
	case errors.Is(err, ErrInvalidInput):
		return ErrorCodeValidation, false
	case errors.Is(err, extract.ErrUnsupportedType), errors.Is(err, extract.ErrTooManyPages), errors.Is(err, extract.ErrEmptyText):
		return ErrorCodeInput, false
	case errors.Is(err, diagram.ErrNoJSON), errors.Is(err, diagram.ErrInvalidDiagram):
		return ErrorCodeLLMOutput, false
	case errors.Is(err, llm.ErrNotImplemented), errors.Is(err, errMissingDeps):
		return ErrorCodeLLMUnavailable, false
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeLLMTimeout, true
	case errors.Is(err, object.ErrNotFound), errors.Is(err, object.ErrTooLarge):
		return ErrorCodeStorage, false
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "request timeout"):
		return ErrorCodeLLMTimeout, true
	case strings.HasPrefix(msg, "dispatch"):
		return ErrorCodeDispatch, true
	case strings.Contains(msg, "storage") || strings.Contains(msg, "document extract"):
		return ErrorCodeStorage, true
	}
	return ErrorCodeInternal, false
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(strings.ToValidUTF8(msg, "?"))
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
		// Stores reject invalid UTF-8, so never leave a split rune behind.
		for !utf8.ValidString(msg) {
			msg = msg[:len(msg)-1]
		}
	}
	return msg
}
