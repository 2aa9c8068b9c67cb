// Package pipeline orchestrates a full migration run: list a business's
// source collections, analyze and classify each one, transform and validate
// its documents, and write the results into the target schema. Collections
// are processed sequentially; a failing collection is recorded and the run
// moves on.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/analyzer"
	"github.com/ledgermap/ledgermap-engine/pkg/apperrors"
	"github.com/ledgermap/ledgermap-engine/pkg/classifier"
	"github.com/ledgermap/ledgermap-engine/pkg/hierarchy"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
	"github.com/ledgermap/ledgermap-engine/pkg/repositories"
	"github.com/ledgermap/ledgermap-engine/pkg/rules"
	"github.com/ledgermap/ledgermap-engine/pkg/source"
	"github.com/ledgermap/ledgermap-engine/pkg/transform"
	"github.com/ledgermap/ledgermap-engine/pkg/validate"
	"github.com/ledgermap/ledgermap-engine/pkg/writer"
)

// MappingService is the classification surface the orchestrator consumes.
type MappingService interface {
	Classify(ctx context.Context, a *models.CollectionAnalysis) (*models.MappingResult, error)
	DetermineMapping(ctx context.Context, a *models.CollectionAnalysis) *models.MappingResult
}

// ClassifierFactory builds a fresh mapping service for one run. A new
// service per run keeps model rotation state from leaking across runs.
type ClassifierFactory func() (MappingService, error)

// Config carries the run-level tunables.
type Config struct {
	SampleSize int
	BatchSize  int
	Classifier classifier.Config
}

const defaultSampleSize = 5

// Orchestrator drives migration runs for one deployment.
type Orchestrator struct {
	cfg           Config
	source        source.DocumentStore
	target        repositories.TargetStore
	runs          repositories.RunRepository
	analyzer      *analyzer.Analyzer
	transformer   *transform.Transformer
	validator     *validate.Validator
	newClassifier ClassifierFactory
	progress      *progressLog
	logger        *zap.Logger
}

// New creates an orchestrator. runs may be nil when run persistence is not
// wanted. factory may be nil; the default builds a classifier from
// cfg.Classifier and degrades to rule-only mapping when no models are
// configured.
func New(cfg Config, src source.DocumentStore, target repositories.TargetStore, runs repositories.RunRepository, factory ClassifierFactory, logger *zap.Logger) *Orchestrator {
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = defaultSampleSize
	}
	o := &Orchestrator{
		cfg:         cfg,
		source:      src,
		target:      target,
		runs:        runs,
		analyzer:    analyzer.New(logger),
		transformer: transform.New(logger),
		validator:   validate.New(logger),
		progress:    newProgressLog(DefaultProgressCapacity),
		logger:      logger.Named("pipeline"),
	}
	if factory == nil {
		factory = o.defaultFactory
	}
	o.newClassifier = factory
	return o
}

func (o *Orchestrator) defaultFactory() (MappingService, error) {
	engine := rules.New(o.logger)
	c, err := classifier.New(o.cfg.Classifier, engine, o.logger)
	if err == nil {
		return c, nil
	}
	if errors.Is(err, apperrors.ErrNoModelsConfig) {
		// No completion models: every collection takes the rule path.
		return classifier.NewWithClients(o.cfg.Classifier, nil, engine, o.logger), nil
	}
	return nil, err
}

// Progress returns a copy of the buffered progress events.
func (o *Orchestrator) Progress() []Event { return o.progress.snapshot() }

// Subscribe registers a callback invoked for every future progress event.
func (o *Orchestrator) Subscribe(fn func(Event)) { o.progress.subscribe(fn) }

// Migrate runs the full pipeline for one business. A business with no
// source collections is a run-level failure; anything below that is
// recorded in the summary and the run keeps going.
func (o *Orchestrator) Migrate(ctx context.Context, businessID string) (*models.MigrationSummary, error) {
	collections, err := o.source.ListCollections(ctx, collectionPrefix(businessID))
	if err != nil {
		return nil, fmt.Errorf("failed to list collections for business %s: %w", businessID, err)
	}
	if len(collections) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNoCollections, businessID)
	}

	svc, err := o.newClassifier()
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	summary := &models.MigrationSummary{
		BusinessID:       businessID,
		TotalCollections: len(collections),
		StartedAt:        time.Now(),
	}
	o.progress.record(StageRunStarted, "", fmt.Sprintf("migrating %d collections", len(collections)))

	for _, coll := range collections {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now()
			return summary, err
		}

		o.progress.record(StageCollectionStarted, coll, "")
		result := o.migrateCollection(ctx, svc, businessID, coll)
		summary.Collections = append(summary.Collections, result)

		if result.Status == models.CollectionFailed {
			o.progress.record(StageCollectionFailed, coll, result.Error)
			continue
		}
		summary.ProcessedCollections++
		summary.TotalRecordsProcessed += int(result.DocumentCount)
		for _, t := range result.Tables {
			summary.TotalRecordsInserted += t.Inserted
		}
		o.progress.record(StageCollectionFinished, coll,
			fmt.Sprintf("%d documents across %d tables", result.DocumentCount, len(result.Tables)))
	}

	summary.FinishedAt = time.Now()
	o.progress.record(StageRunFinished, "",
		fmt.Sprintf("%d/%d collections, %d records inserted",
			summary.ProcessedCollections, summary.TotalCollections, summary.TotalRecordsInserted))

	o.persistRun(ctx, businessID, summary)

	return summary, nil
}

func (o *Orchestrator) migrateCollection(ctx context.Context, svc MappingService, businessID, collection string) models.CollectionResult {
	name := strings.TrimPrefix(collection, collectionPrefix(businessID))
	result := models.CollectionResult{CollectionID: name}

	count, err := o.source.Count(ctx, collection)
	if err != nil {
		return failed(result, fmt.Errorf("failed to count documents: %w", err))
	}
	result.DocumentCount = count
	if count == 0 {
		result.Status = models.CollectionSkipped
		return result
	}

	sample, err := o.source.Sample(ctx, collection, o.cfg.SampleSize)
	if err != nil {
		return failed(result, fmt.Errorf("failed to sample documents: %w", err))
	}

	analysis := o.analyzer.Analyze(name, sample, count)
	mapping := svc.DetermineMapping(ctx, analysis)
	if len(mapping.Tables) == 0 {
		return failed(result, fmt.Errorf("no target table resolved for collection %s", name))
	}

	docs, err := o.source.Scan(ctx, collection)
	if err != nil {
		return failed(result, fmt.Errorf("failed to scan documents: %w", err))
	}

	for _, tm := range mapping.Tables {
		var tr models.TableResult
		if tm.TableName == "product" {
			tr, err = o.buildHierarchy(ctx, businessID, name, docs)
			if err != nil {
				// Category or brand persistence broke; this collection
				// cannot produce a coherent hierarchy.
				return failed(result, err)
			}
		} else {
			tr = o.migrateTable(ctx, businessID, &tm, docs)
		}
		result.Tables = append(result.Tables, tr)
	}

	result.Status = models.CollectionMigrated
	return result
}

func (o *Orchestrator) migrateTable(ctx context.Context, businessID string, tm *models.TableMapping, docs []map[string]any) models.TableResult {
	records := make([]models.TransformedRecord, 0, len(docs))
	for _, doc := range docs {
		if record, ok := o.transformer.Transform(doc, tm, businessID); ok {
			records = append(records, record)
		}
	}

	cleaned := o.validator.Clean(tm.TableName, records)
	w := writer.New(o.target, o.cfg.BatchSize, o.logger)
	outcome := w.Write(ctx, tm.TableName, cleaned.Clean)

	return models.TableResult{
		Table:       tm.TableName,
		Transformed: len(records),
		Clean:       len(cleaned.Clean),
		Duplicates:  cleaned.Duplicates,
		Inserted:    outcome.Inserted,
		Updated:     outcome.Updated,
		Errors:      outcome.Errors,
	}
}

func (o *Orchestrator) buildHierarchy(ctx context.Context, businessID, collection string, docs []map[string]any) (models.TableResult, error) {
	builder := hierarchy.NewBuilder(o.target, o.cfg.BatchSize, o.logger)
	return builder.Build(ctx, businessID, collection, docs)
}

// Analyze profiles one collection without writing anything.
func (o *Orchestrator) Analyze(ctx context.Context, businessID, collectionID string) (*models.CollectionAnalysis, error) {
	collection := qualifiedCollection(businessID, collectionID)

	count, err := o.source.Count(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents in %s: %w", collectionID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: collection %s", apperrors.ErrNotFound, collectionID)
	}
	sample, err := o.source.Sample(ctx, collection, o.cfg.SampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to sample documents in %s: %w", collectionID, err)
	}
	return o.analyzer.Analyze(collectionID, sample, count), nil
}

// Classify resolves the table mapping for an analysis without writing
// anything. The rule fallback applies, so a result is always produced.
func (o *Orchestrator) Classify(ctx context.Context, analysis *models.CollectionAnalysis) (*models.MappingResult, error) {
	svc, err := o.newClassifier()
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}
	return svc.DetermineMapping(ctx, analysis), nil
}

func (o *Orchestrator) persistRun(ctx context.Context, businessID string, summary *models.MigrationSummary) {
	if o.runs == nil {
		return
	}
	run := &models.MigrationRun{
		ID:         uuid.New(),
		BusinessID: businessID,
		Summary:    summary,
		CreatedAt:  time.Now(),
	}
	if err := o.runs.Create(ctx, run); err != nil {
		o.logger.Error("failed to persist migration run",
			zap.String("business_id", businessID), zap.Error(err))
	}
}

// Runs returns recent persisted run summaries for a business.
func (o *Orchestrator) Runs(ctx context.Context, businessID string, limit int) ([]*models.MigrationRun, error) {
	if o.runs == nil {
		return nil, nil
	}
	return o.runs.GetByBusiness(ctx, businessID, limit)
}

func failed(result models.CollectionResult, err error) models.CollectionResult {
	result.Status = models.CollectionFailed
	result.Error = err.Error()
	return result
}

// Source collections are stored as <businessID>_<collection>.
func collectionPrefix(businessID string) string { return businessID + "_" }

func qualifiedCollection(businessID, collectionID string) string {
	prefix := collectionPrefix(businessID)
	if strings.HasPrefix(collectionID, prefix) {
		return collectionID
	}
	return prefix + collectionID
}
