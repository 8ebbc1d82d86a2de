package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmontero/ocr-pipeline-be/internal/models"
	"github.com/alexmontero/ocr-pipeline-be/internal/shared/database"
)

func newTestRepo(t *testing.T) JobRepo {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewSQLiteJobRepo(db)
	require.NoError(t, err)
	return repo
}

func TestSQLiteCreateAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	job := &models.OCRJob{
		ImageHash:  "abc123",
		DocType:    "invoice",
		Language:   "es",
		Provider:   "ocr_space",
		Success:    true,
		Confidence: 0.87,
		TextLength: 420,
		Elements:   []byte(`{"emails":["a@b.es"]}`),
		DurationMS: 1500,
	}
	require.NoError(t, repo.Create(ctx, job))
	assert.NotEmpty(t, job.ID)

	jobs, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "abc123", jobs[0].ImageHash)
	assert.Equal(t, "ocr_space", jobs[0].Provider)
	assert.True(t, jobs[0].Success)
	assert.InDelta(t, 0.87, jobs[0].Confidence, 1e-9)
}

func TestSQLiteListOrderAndLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		job := &models.OCRJob{
			ImageHash: "hash",
			Provider:  "tesseract",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, job))
	}

	jobs, err := repo.List(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.True(t, jobs[0].CreatedAt.After(jobs[1].CreatedAt) || jobs[0].CreatedAt.Equal(jobs[1].CreatedAt))
}

func TestSQLiteStatistics(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, j := range []*models.OCRJob{
		{ImageHash: "h1", Provider: "ocr_space", Success: true, Confidence: 0.8},
		{ImageHash: "h2", Provider: "ocr_space", Success: true, Confidence: 0.6},
		{ImageHash: "h3", Provider: "tesseract", Success: false},
	} {
		require.NoError(t, repo.Create(ctx, j))
	}

	stats, err := repo.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalJobs)
	assert.Equal(t, int64(2), stats.Succeeded)
	assert.InDelta(t, 0.7, stats.AvgConfidence, 1e-9)
	assert.Equal(t, int64(2), stats.ByProvider["ocr_space"])
	assert.Equal(t, int64(1), stats.ByProvider["tesseract"])
}

func TestSQLiteStatisticsEmpty(t *testing.T) {
	repo := newTestRepo(t)

	stats, err := repo.Statistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalJobs)
	assert.Zero(t, stats.AvgConfidence)
}

func TestSQLiteDeleteOlderThan(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	old := &models.OCRJob{ImageHash: "old", CreatedAt: time.Now().UTC().AddDate(0, 0, -120)}
	fresh := &models.OCRJob{ImageHash: "fresh", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, fresh))

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().UTC().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	jobs, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "fresh", jobs[0].ImageHash)
}
