package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OCRJob is one processed document in the persistent history. The
// image itself is never stored, only its content hash and the
// processing outcome.
type OCRJob struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	ImageHash  string         `gorm:"type:varchar(64);index" json:"image_hash"`
	DocType    string         `gorm:"type:varchar(20)" json:"doc_type"`
	Language   string         `gorm:"type:varchar(8)" json:"language"`
	Provider   string         `gorm:"type:varchar(32);index" json:"provider"`
	Success    bool           `json:"success"`
	Confidence float64        `json:"confidence"`
	TextLength int            `json:"text_length"`
	Elements   datatypes.JSON `json:"elements"`
	DurationMS int64          `json:"duration_ms"`
	FromCache  bool           `json:"from_cache"`
	ErrorMsg   string         `gorm:"type:text" json:"error_msg,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (j *OCRJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

func (OCRJob) TableName() string {
	return "ocr_jobs"
}

// JobStatistics aggregates the persistent history.
type JobStatistics struct {
	TotalJobs     int64            `json:"total_jobs"`
	Succeeded     int64            `json:"succeeded"`
	AvgConfidence float64          `json:"avg_confidence"`
	ByProvider    map[string]int64 `json:"by_provider"`
}
