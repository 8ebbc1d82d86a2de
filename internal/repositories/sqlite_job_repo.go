package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/alexmontero/ocr-pipeline-be/internal/models"
)

// sqliteJobRepo is the embedded history store for deployments without
// a Postgres instance. Same contract as the gorm repository, plain
// SQL underneath.
type sqliteJobRepo struct {
	db *sql.DB
}

// NewSQLiteJobRepo returns the SQLite-backed history repository and
// creates the schema when missing.
func NewSQLiteJobRepo(db *sql.DB) (JobRepo, error) {
	schema := `CREATE TABLE IF NOT EXISTS ocr_jobs (
		id TEXT PRIMARY KEY,
		image_hash TEXT NOT NULL,
		doc_type TEXT,
		language TEXT,
		provider TEXT,
		success INTEGER NOT NULL DEFAULT 0,
		confidence REAL NOT NULL DEFAULT 0,
		text_length INTEGER NOT NULL DEFAULT 0,
		elements TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		from_cache INTEGER NOT NULL DEFAULT 0,
		error_msg TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ocr_jobs_created_at ON ocr_jobs (created_at);
	CREATE INDEX IF NOT EXISTS idx_ocr_jobs_provider ON ocr_jobs (provider);`

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &sqliteJobRepo{db: db}, nil
}

func (r *sqliteJobRepo) Create(ctx context.Context, job *models.OCRJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ocr_jobs
		 (id, image_hash, doc_type, language, provider, success, confidence,
		  text_length, elements, duration_ms, from_cache, error_msg, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.ImageHash, job.DocType, job.Language, job.Provider,
		job.Success, job.Confidence, job.TextLength, string(job.Elements),
		job.DurationMS, job.FromCache, job.ErrorMsg, job.CreatedAt)
	return err
}

func (r *sqliteJobRepo) List(ctx context.Context, limit, offset int) ([]models.OCRJob, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, image_hash, doc_type, language, provider, success,
		        confidence, text_length, elements, duration_ms, from_cache,
		        error_msg, created_at
		 FROM ocr_jobs ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.OCRJob
	for rows.Next() {
		var job models.OCRJob
		var elements, errorMsg sql.NullString
		if err := rows.Scan(&job.ID, &job.ImageHash, &job.DocType, &job.Language,
			&job.Provider, &job.Success, &job.Confidence, &job.TextLength,
			&elements, &job.DurationMS, &job.FromCache, &errorMsg, &job.CreatedAt); err != nil {
			return nil, err
		}
		if elements.Valid {
			job.Elements = []byte(elements.String)
		}
		job.ErrorMsg = errorMsg.String
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *sqliteJobRepo) Statistics(ctx context.Context) (*models.JobStatistics, error) {
	stats := &models.JobStatistics{ByProvider: make(map[string]int64)}

	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0),
		        COALESCE(AVG(CASE WHEN success = 1 THEN confidence END), 0)
		 FROM ocr_jobs`)
	if err := row.Scan(&stats.TotalJobs, &stats.Succeeded, &stats.AvgConfidence); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT provider, COUNT(*) FROM ocr_jobs WHERE provider <> '' GROUP BY provider`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var provider string
		var count int64
		if err := rows.Scan(&provider, &count); err != nil {
			return nil, err
		}
		stats.ByProvider[provider] = count
	}
	return stats, rows.Err()
}

func (r *sqliteJobRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ocr_jobs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
