package models

import (
	"time"

	"github.com/google/uuid"
)

// CollectionStatus describes the outcome of migrating one collection.
type CollectionStatus string

const (
	CollectionMigrated CollectionStatus = "migrated"
	CollectionFailed   CollectionStatus = "failed"
	CollectionSkipped  CollectionStatus = "skipped"
)

// TableResult reports per-table write statistics for one collection.
// Partial success is an accepted outcome: Errors may be non-empty while
// Inserted is non-zero.
type TableResult struct {
	Table       string   `json:"table"`
	Transformed int      `json:"transformed"`
	Clean       int      `json:"clean"`
	Duplicates  int      `json:"duplicates"`
	Inserted    int      `json:"inserted"`
	Updated     int      `json:"updated"`
	Errors      []string `json:"errors,omitempty"`
}

// SuccessRate is inserted+updated over transformed. It is allowed to be <1.
func (t *TableResult) SuccessRate() float64 {
	if t.Transformed == 0 {
		return 0
	}
	return float64(t.Inserted+t.Updated) / float64(t.Transformed)
}

// CollectionResult aggregates the outcome of one source collection.
type CollectionResult struct {
	CollectionID  string           `json:"collection_id"`
	DocumentCount int64            `json:"document_count"`
	Status        CollectionStatus `json:"status"`
	Error         string           `json:"error,omitempty"`
	Tables        []TableResult    `json:"tables,omitempty"`
}

// MigrationSummary is the run-level result returned by the pipeline.
type MigrationSummary struct {
	BusinessID            string             `json:"business_id"`
	TotalCollections      int                `json:"total_collections"`
	ProcessedCollections  int                `json:"processed_collections"`
	TotalRecordsProcessed int                `json:"total_records_processed"`
	TotalRecordsInserted  int                `json:"total_records_inserted"`
	Collections           []CollectionResult `json:"collections"`
	StartedAt             time.Time          `json:"started_at"`
	FinishedAt            time.Time          `json:"finished_at"`
}

// MigrationRun is the persisted audit record of one pipeline run.
type MigrationRun struct {
	ID         uuid.UUID         `json:"id"`
	BusinessID string            `json:"business_id"`
	Summary    *MigrationSummary `json:"summary"`
	CreatedAt  time.Time         `json:"created_at"`
}
