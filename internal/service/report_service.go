package service

import (
	"context"
	"errors"
	"log"

	"cares/internal/cache"
	"cares/internal/model"
	"cares/internal/repository"
)

var ErrReportNotFound = errors.New("report not found")

// ReportService reads stored reports through the cache
type ReportService struct {
	repo  repository.ReportRepo
	cache cache.ReportCache
}

// NewReportService creates a new report service
func NewReportService(repo repository.ReportRepo, reportCache cache.ReportCache) *ReportService {
	if reportCache == nil {
		reportCache = cache.NoopReportCache{}
	}
	return &ReportService{repo: repo, cache: reportCache}
}

// List returns every report summary, oldest first
func (s *ReportService) List(ctx context.Context) ([]model.ReportSummary, error) {
	if cached, err := s.cache.GetList(ctx); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("report list cache read failed: %v", err)
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetList(ctx, list); err != nil {
		log.Printf("report list cache write failed: %v", err)
	}
	return list, nil
}

// Get returns one full record
func (s *ReportService) Get(ctx context.Context, id int64) (*model.ReportRecord, error) {
	if cached, err := s.cache.Get(ctx, id); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("report %d: cache read failed: %v", id, err)
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrReportNotFound
	}
	if err := s.cache.Set(ctx, rec); err != nil {
		log.Printf("report %d: cache write failed: %v", id, err)
	}
	return rec, nil
}
