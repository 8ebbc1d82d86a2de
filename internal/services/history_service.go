package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/alexmontero/ocr-pipeline-be/internal/core/pipeline"
	"github.com/alexmontero/ocr-pipeline-be/internal/models"
	"github.com/alexmontero/ocr-pipeline-be/internal/repositories"
)

// HistoryService records pipeline outcomes and answers history and
// statistics queries. Recording is best-effort: a broken history
// store must never fail a recognition request.
type HistoryService struct {
	repo          repositories.JobRepo
	retentionDays int
}

func NewHistoryService(repo repositories.JobRepo, retentionDays int) *HistoryService {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &HistoryService{repo: repo, retentionDays: retentionDays}
}

// RecordJob persists one pipeline response. Cache hits are recorded
// too, so statistics reflect real traffic, not just provider calls.
func (s *HistoryService) RecordJob(ctx context.Context, imageHash string, opts pipeline.Options, resp pipeline.Response) {
	elements, err := json.Marshal(resp.Elements)
	if err != nil {
		elements = []byte("{}")
	}

	job := &models.OCRJob{
		ImageHash:  imageHash,
		DocType:    opts.DocType,
		Language:   opts.Language,
		Provider:   resp.Provider,
		Success:    resp.Success,
		Confidence: resp.Confidence,
		TextLength: len(resp.Text),
		Elements:   elements,
		DurationMS: resp.DurationMS,
		FromCache:  resp.FromCache,
		ErrorMsg:   resp.Error,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, job); err != nil {
		log.Error().Err(err).Msg("failed to record ocr job")
	}
}

func (s *HistoryService) List(ctx context.Context, limit, offset int) ([]models.OCRJob, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *HistoryService) Statistics(ctx context.Context) (*models.JobStatistics, error) {
	return s.repo.Statistics(ctx)
}

// PurgeOld removes history beyond the retention window. Wired to the
// daily cron job.
func (s *HistoryService) PurgeOld(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("history purge failed")
		return
	}
	log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("history purge complete")
}
