package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/docquiz/docquiz-backend/internal/config"
	"github.com/docquiz/docquiz-backend/internal/exam"
	"github.com/docquiz/docquiz-backend/internal/extract"
	"github.com/docquiz/docquiz-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Extraction errors.
var (
	ErrJobNotFound        = errors.New("extraction job not found")
	ErrNoQuestionSet      = errors.New("no question set extracted yet")
	ErrExtractionThrottle = errors.New("an extraction is already running")
)

// progressTTL bounds how long finished job progress stays readable.
const progressTTL = time.Hour

// ExtractionService runs background question-extraction jobs and owns the
// current question set. Job progress lives in Redis so it survives across
// handler instances; the authoritative QuestionSet stays in process memory.
type ExtractionService struct {
	cfg *config.Config
	rdb *redis.Client
	log zerolog.Logger
	gen *extract.Generator

	mu      sync.RWMutex
	running bool
	setID   string
	set     *exam.QuestionSet
	source  string
}

// NewExtractionService creates a new ExtractionService.
func NewExtractionService(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) *ExtractionService {
	return &ExtractionService{
		cfg: cfg,
		rdb: rdb,
		log: log.With().Str("component", "extraction_service").Logger(),
		gen: extract.NewGenerator(time.Now().UnixNano()),
	}
}

// Start launches a background extraction and returns its job id. Only one
// job runs at a time; the frontend polls a single progress bar.
func (s *ExtractionService) Start(ctx context.Context, req model.StartExtractionRequest) (string, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return "", ErrExtractionThrottle
	}
	s.running = true
	s.mu.Unlock()

	jobID := uuid.New().String()

	target := req.QuestionCount
	if target <= 0 {
		target = s.cfg.QuestionTarget
	}

	dir := s.cfg.UploadDir
	source := "uploaded documents"
	if req.UseSamples {
		dir = s.cfg.SampleDir
		source = "sample documents"
	}

	s.writeProgress(ctx, model.ExtractionProgress{
		JobID:    jobID,
		Status:   "starting",
		Progress: 5,
		Message:  "Initializing document processor...",
	})

	go s.run(jobID, dir, source, target)

	return jobID, nil
}

// Progress returns the current state of a job.
func (s *ExtractionService) Progress(ctx context.Context, jobID string) (model.ExtractionProgress, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.ExtractionProgressKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return model.ExtractionProgress{}, ErrJobNotFound
	}
	if err != nil {
		return model.ExtractionProgress{}, fmt.Errorf("get progress: %w", err)
	}

	var progress model.ExtractionProgress
	if err := json.Unmarshal([]byte(raw), &progress); err != nil {
		return model.ExtractionProgress{}, fmt.Errorf("decode progress: %w", err)
	}
	return progress, nil
}

// CurrentSet returns the most recently extracted question set.
func (s *ExtractionService) CurrentSet() (*exam.QuestionSet, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil {
		return nil, "", ErrNoQuestionSet
	}
	return s.set, s.source, nil
}

// Payload returns the sanitized paper for the current set. The Redis copy is
// the fast path; a cache miss falls back to memory and self-heals.
func (s *ExtractionService) Payload(ctx context.Context) (model.QuestionPayload, error) {
	s.mu.RLock()
	setID := s.setID
	set := s.set
	source := s.source
	s.mu.RUnlock()

	if set == nil {
		return model.QuestionPayload{}, ErrNoQuestionSet
	}

	raw, err := s.rdb.Get(ctx, config.CacheKey.QuestionPayloadKey(setID)).Result()
	if err == nil {
		var payload model.QuestionPayload
		if err := json.Unmarshal([]byte(raw), &payload); err == nil {
			return payload, nil
		}
	}

	payload := model.QuestionPayload{
		SetID:     setID,
		Source:    source,
		Total:     set.Len(),
		Questions: model.SanitizeQuestions(set.Questions()),
	}
	s.cachePayload(ctx, payload)
	return payload, nil
}

// UseFallback installs the built-in question set, used when no documents are
// available but an exam should still run.
func (s *ExtractionService) UseFallback(ctx context.Context) error {
	set, err := exam.NewQuestionSet(extract.FallbackQuestions())
	if err != nil {
		return fmt.Errorf("build fallback set: %w", err)
	}
	s.install(ctx, set, "fallback questions")
	return nil
}

// run executes one extraction job. It owns the running flag.
func (s *ExtractionService) run(jobID, dir, source string, target int) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	// Detached from the request — the job outlives it.
	ctx := context.Background()

	paths, err := listDocuments(dir)
	if err != nil || len(paths) == 0 {
		s.log.Warn().Err(err).Str("dir", dir).Msg("No readable documents, using fallback questions")
		if fbErr := s.UseFallback(ctx); fbErr != nil {
			s.failJob(ctx, jobID, fbErr)
			return
		}
		s.finishJob(ctx, jobID, len(extract.FallbackQuestions()))
		return
	}

	s.writeProgress(ctx, model.ExtractionProgress{
		JobID:    jobID,
		Status:   "processing",
		Progress: 10,
		Message:  fmt.Sprintf("Found %d documents. Starting extraction...", len(paths)),
	})

	var questions []exam.Question
	for i, path := range paths {
		name := filepath.Base(path)
		s.writeProgress(ctx, model.ExtractionProgress{
			JobID:          jobID,
			Status:         "processing",
			Progress:       10 + (i * 70 / len(paths)),
			Message:        fmt.Sprintf("Processing %s...", name),
			CurrentFile:    name,
			QuestionsFound: len(questions),
		})

		src, err := extract.ReadFile(path)
		if err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("Skipping unreadable document")
			continue
		}

		remaining := target - len(questions)
		if remaining <= 0 {
			break
		}
		questions = append(questions, s.gen.Generate([]extract.SourceText{src}, remaining)...)
	}

	s.writeProgress(ctx, model.ExtractionProgress{
		JobID:          jobID,
		Status:         "finalizing",
		Progress:       85,
		Message:        "Finalizing questions and formatting...",
		QuestionsFound: len(questions),
	})

	if len(questions) == 0 {
		questions = extract.FallbackQuestions()
		source = "fallback questions"
	}
	if len(questions) > target {
		questions = questions[:target]
	}
	for i := range questions {
		questions[i].ID = i + 1
	}

	set, err := exam.NewQuestionSet(questions)
	if err != nil {
		s.failJob(ctx, jobID, err)
		return
	}

	s.install(ctx, set, source)
	s.finishJob(ctx, jobID, set.Len())
}

// install makes a set the current one and refreshes the payload cache.
func (s *ExtractionService) install(ctx context.Context, set *exam.QuestionSet, source string) {
	setID := uuid.New().String()

	s.mu.Lock()
	s.setID = setID
	s.set = set
	s.source = source
	s.mu.Unlock()

	s.cachePayload(ctx, model.QuestionPayload{
		SetID:     setID,
		Source:    source,
		Total:     set.Len(),
		Questions: model.SanitizeQuestions(set.Questions()),
	})

	s.log.Info().Str("set_id", setID).Int("questions", set.Len()).Str("source", source).Msg("Question set installed")
}

func (s *ExtractionService) cachePayload(ctx context.Context, payload model.QuestionPayload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.QuestionPayloadKey(payload.SetID), raw, 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Payload cache write failed")
	}
	if err := s.rdb.Set(ctx, config.CacheKey.CurrentQuestionSetKey(), payload.SetID, 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Current set pointer write failed")
	}
}

func (s *ExtractionService) finishJob(ctx context.Context, jobID string, found int) {
	s.writeProgress(ctx, model.ExtractionProgress{
		JobID:          jobID,
		Status:         "completed",
		Progress:       100,
		Message:        fmt.Sprintf("Successfully extracted %d questions!", found),
		QuestionsFound: found,
	})
}

func (s *ExtractionService) failJob(ctx context.Context, jobID string, err error) {
	s.log.Error().Err(err).Str("job_id", jobID).Msg("Extraction failed")
	s.writeProgress(ctx, model.ExtractionProgress{
		JobID:   jobID,
		Status:  "error",
		Message: fmt.Sprintf("Error during extraction: %v", err),
	})
}

func (s *ExtractionService) writeProgress(ctx context.Context, progress model.ExtractionProgress) {
	raw, err := json.Marshal(progress)
	if err != nil {
		return
	}
	key := config.CacheKey.ExtractionProgressKey(progress.JobID)
	if err := s.rdb.Set(ctx, key, raw, progressTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("job_id", progress.JobID).Msg("Progress write failed")
	}
}

// listDocuments returns the readable document paths in a directory.
func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !extract.IsSupported(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}
