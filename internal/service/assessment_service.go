package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cares/internal/cache"
	"cares/internal/catalog"
	"cares/internal/extract"
	"cares/internal/generator"
	"cares/internal/model"
	"cares/internal/repository"
	"cares/internal/scoring"
	"cares/internal/synth"
)

var (
	ErrInvalidAssessment = errors.New("invalid assessment")
	ErrPersist           = errors.New("failed to save report")
)

// Request limits
const (
	MinChildAge     = 1
	MaxChildAge     = 25
	MaxOptionLength = 2
)

// AssessmentService runs one submission through scoring, the generator,
// extraction, synthesis and persistence
type AssessmentService struct {
	catalog     *catalog.Catalog
	synth       *synth.Synthesizer
	generator   generator.Generator
	repo        repository.ReportRepo
	cache       cache.ReportCache
	broadcaster Broadcaster
	ids         *IDSource
	now         func() time.Time
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(cat *catalog.Catalog, gen generator.Generator, repo repository.ReportRepo, reportCache cache.ReportCache) *AssessmentService {
	if cat == nil {
		cat = catalog.Default()
	}
	if reportCache == nil {
		reportCache = cache.NoopReportCache{}
	}
	return &AssessmentService{
		catalog:     cat,
		synth:       synth.NewSynthesizer(cat, nil),
		generator:   gen,
		repo:        repo,
		cache:       reportCache,
		broadcaster: noopBroadcaster{},
		ids:         NewIDSource(nil),
		now:         time.Now,
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *AssessmentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetClock replaces the clock used for ids, timestamps and follow-up dates
func (s *AssessmentService) SetClock(now func() time.Time) {
	s.now = now
	s.ids = NewIDSource(now)
	s.synth = synth.NewSynthesizer(s.catalog, now)
}

// Validate checks the request shape. Unknown question ids and option keys
// are accepted; scoring degrades them to the worst score.
func Validate(req *model.AssessmentRequest) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", ErrInvalidAssessment)
	}
	if strings.TrimSpace(req.ChildName) == "" {
		return fmt.Errorf("%w: child_name is required", ErrInvalidAssessment)
	}
	if req.ChildAge < MinChildAge || req.ChildAge > MaxChildAge {
		return fmt.Errorf("%w: child_age must be between %d and %d", ErrInvalidAssessment, MinChildAge, MaxChildAge)
	}
	if len(req.Answers) == 0 {
		return fmt.Errorf("%w: answers must not be empty", ErrInvalidAssessment)
	}
	for i, a := range req.Answers {
		if a.QID <= 0 {
			return fmt.Errorf("%w: answers[%d].qid must be positive", ErrInvalidAssessment, i)
		}
		if a.Option == "" || len(a.Option) > MaxOptionLength {
			return fmt.Errorf("%w: answers[%d].option must be 1-%d characters", ErrInvalidAssessment, i, MaxOptionLength)
		}
	}
	return nil
}

// Assess scores the request, asks the generator for a narrative and stores
// the completed report.
//
// When the generator fails a scores-only record is still stored and the
// generator error is returned.
func (s *AssessmentService) Assess(ctx context.Context, req *model.AssessmentRequest) (*model.AssessmentResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	scores := scoring.Compute(s.catalog, req.Answers)
	prompt := generator.BuildPrompt(s.catalog, req.ChildInfo, req.Answers)

	out, genErr := s.generator.Generate(ctx, prompt)
	if genErr != nil {
		rec := s.newRecord(req.ChildInfo, scores)
		log.Printf("report %d: generator failed: %v", rec.ID, genErr)
		if err := s.store(ctx, rec); err != nil {
			log.Printf("report %d: failed to save scores-only record: %v", rec.ID, err)
		}
		s.broadcaster.Broadcast(MsgReportFailed, rec.Summary())
		return nil, genErr
	}

	parsed, strategy := extract.Partial(out.Text)

	rec := s.newRecord(req.ChildInfo, scores)
	rec.Answers = req.Answers
	rec.AIRaw = out
	rec.AIParsed = parsed
	rec.AIStructured = s.synth.Synthesize(parsed, scores, req.ChildInfo, req.Answers)
	rec.ExtractStrategy = string(strategy)

	if out.Text != "" && strategy == extract.StrategyFailed {
		log.Printf("report %d: no structured data in generator text, kept as narrative", rec.ID)
	}

	if err := s.store(ctx, rec); err != nil {
		log.Printf("report %d: save failed: %v", rec.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	s.broadcaster.Broadcast(MsgReportCreated, rec.Summary())
	return model.NewAssessmentResponse(rec), nil
}

func (s *AssessmentService) newRecord(child model.ChildInfo, scores model.Scores) *model.ReportRecord {
	now := s.now()
	return &model.ReportRecord{
		ID:        s.ids.Next(),
		Timestamp: float64(now.UnixNano()) / 1e9,
		Child:     child,
		Scores:    scores,
	}
}

func (s *AssessmentService) store(ctx context.Context, rec *model.ReportRecord) error {
	if err := s.repo.Save(ctx, rec); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, rec); err != nil {
		log.Printf("report %d: cache set failed: %v", rec.ID, err)
	}
	if err := s.cache.InvalidateList(ctx); err != nil {
		log.Printf("report %d: cache invalidate failed: %v", rec.ID, err)
	}
	return nil
}
