package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/apperrors"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
	"github.com/ledgermap/ledgermap-engine/pkg/repositories"
	"github.com/ledgermap/ledgermap-engine/pkg/source"
)

// fakeMapping resolves collections by name so tests control the routing
// without exercising completion clients.
type fakeMapping struct {
	byCollection map[string]*models.MappingResult
}

func (f *fakeMapping) Classify(ctx context.Context, a *models.CollectionAnalysis) (*models.MappingResult, error) {
	return f.DetermineMapping(ctx, a), nil
}

func (f *fakeMapping) DetermineMapping(_ context.Context, a *models.CollectionAnalysis) *models.MappingResult {
	if r, ok := f.byCollection[a.CollectionID]; ok {
		return r
	}
	return &models.MappingResult{}
}

type fakeRuns struct {
	created []*models.MigrationRun
	err     error
}

func (f *fakeRuns) Create(_ context.Context, run *models.MigrationRun) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRuns) GetByBusiness(_ context.Context, businessID string, limit int) ([]*models.MigrationRun, error) {
	return f.created, nil
}

func customerMapping() *models.MappingResult {
	return &models.MappingResult{
		Tables: []models.TableMapping{{
			TableName:  "customer",
			Confidence: 0.9,
			FieldMappings: []models.FieldMapping{
				{SourceField: "name", TargetField: "customer_name", Confidence: 0.95, Method: models.MappingMethodRule},
				{SourceField: "phone", TargetField: "phone", Confidence: 0.95, Method: models.MappingMethodRule},
			},
		}},
	}
}

func productMapping() *models.MappingResult {
	return &models.MappingResult{
		Tables: []models.TableMapping{{
			TableName:  "product",
			Confidence: 0.8,
			FieldMappings: []models.FieldMapping{
				{SourceField: "item_name", TargetField: "product_name", Confidence: 0.95, Method: models.MappingMethodRule},
			},
		}},
	}
}

func newTestOrchestrator(src source.DocumentStore, target repositories.TargetStore, runs repositories.RunRepository, svc MappingService) *Orchestrator {
	factory := func() (MappingService, error) { return svc, nil }
	return New(Config{SampleSize: 5, BatchSize: 10}, src, target, runs, factory, zap.NewNop())
}

func TestMigrate_FullRun(t *testing.T) {
	src := source.NewMockStore()
	src.Collections["biz1_customers"] = []map[string]any{
		{"name": "Rahim Traders", "phone": "01712345678"},
		{"name": "Karim Store", "phone": "01898765432"},
	}
	src.Collections["biz1_books"] = []map[string]any{
		{"item_name": "Atomic Habits", "stock": 2},
	}
	// Another business's collection must not leak into the run.
	src.Collections["biz2_customers"] = []map[string]any{
		{"name": "Other Shop"},
	}

	target := repositories.NewMockTargetStore()
	runs := &fakeRuns{}
	svc := &fakeMapping{byCollection: map[string]*models.MappingResult{
		"customers": customerMapping(),
		"books":     productMapping(),
	}}
	o := newTestOrchestrator(src, target, runs, svc)

	summary, err := o.Migrate(context.Background(), "biz1")
	require.NoError(t, err)

	assert.Equal(t, "biz1", summary.BusinessID)
	assert.Equal(t, 2, summary.TotalCollections)
	assert.Equal(t, 2, summary.ProcessedCollections)
	assert.Equal(t, 3, summary.TotalRecordsProcessed)
	assert.Equal(t, 4, summary.TotalRecordsInserted, "2 customers + 2 product units")

	assert.Len(t, target.Rows("customer"), 2)
	assert.Len(t, target.Rows("product"), 2)

	require.Len(t, runs.created, 1)
	assert.Equal(t, "biz1", runs.created[0].BusinessID)
	assert.NotNil(t, runs.created[0].Summary)
}

func TestMigrate_NoCollections(t *testing.T) {
	o := newTestOrchestrator(source.NewMockStore(), repositories.NewMockTargetStore(), nil, &fakeMapping{})

	_, err := o.Migrate(context.Background(), "biz1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoCollections)
}

func TestMigrate_FailedCollectionDoesNotStopRun(t *testing.T) {
	src := source.NewMockStore()
	src.Collections["biz1_customers"] = []map[string]any{
		{"name": "Rahim Traders"},
	}
	// No mapping registered for "mystery": the run records a failure and
	// keeps going.
	src.Collections["biz1_mystery"] = []map[string]any{
		{"blob": "???"},
	}

	target := repositories.NewMockTargetStore()
	svc := &fakeMapping{byCollection: map[string]*models.MappingResult{
		"customers": customerMapping(),
	}}
	o := newTestOrchestrator(src, target, nil, svc)

	summary, err := o.Migrate(context.Background(), "biz1")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalCollections)
	assert.Equal(t, 1, summary.ProcessedCollections)
	require.Len(t, summary.Collections, 2)

	var failed *models.CollectionResult
	for i := range summary.Collections {
		if summary.Collections[i].CollectionID == "mystery" {
			failed = &summary.Collections[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, models.CollectionFailed, failed.Status)
	assert.Contains(t, failed.Error, "no target table")
	assert.Len(t, target.Rows("customer"), 1)
}

func TestMigrate_EmptyCollectionSkipped(t *testing.T) {
	src := source.NewMockStore()
	src.Collections["biz1_expenses"] = nil

	o := newTestOrchestrator(src, repositories.NewMockTargetStore(), nil, &fakeMapping{})

	summary, err := o.Migrate(context.Background(), "biz1")
	require.NoError(t, err)

	require.Len(t, summary.Collections, 1)
	assert.Equal(t, models.CollectionSkipped, summary.Collections[0].Status)
	assert.Equal(t, 1, summary.ProcessedCollections)
	assert.Zero(t, summary.TotalRecordsInserted)
}

func TestMigrate_ContextCancelled(t *testing.T) {
	src := source.NewMockStore()
	src.Collections["biz1_customers"] = []map[string]any{{"name": "Rahim Traders"}}

	o := newTestOrchestrator(src, repositories.NewMockTargetStore(), nil, &fakeMapping{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := o.Migrate(ctx, "biz1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Empty(t, summary.Collections)
}

func TestMigrate_RecordsProgressEvents(t *testing.T) {
	src := source.NewMockStore()
	src.Collections["biz1_customers"] = []map[string]any{{"name": "Rahim Traders"}}

	svc := &fakeMapping{byCollection: map[string]*models.MappingResult{
		"customers": customerMapping(),
	}}
	o := newTestOrchestrator(src, repositories.NewMockTargetStore(), nil, svc)

	var seen []Event
	o.Subscribe(func(e Event) { seen = append(seen, e) })

	_, err := o.Migrate(context.Background(), "biz1")
	require.NoError(t, err)

	stages := make([]string, len(seen))
	for i, e := range seen {
		stages[i] = e.Stage
	}
	assert.Equal(t, []string{
		StageRunStarted,
		StageCollectionStarted,
		StageCollectionFinished,
		StageRunFinished,
	}, stages)
	assert.Equal(t, seen, o.Progress())
}

func TestMigrate_RunPersistenceFailureIsNotFatal(t *testing.T) {
	src := source.NewMockStore()
	src.Collections["biz1_customers"] = []map[string]any{{"name": "Rahim Traders"}}

	svc := &fakeMapping{byCollection: map[string]*models.MappingResult{
		"customers": customerMapping(),
	}}
	runs := &fakeRuns{err: errors.New("insert failed")}
	o := newTestOrchestrator(src, repositories.NewMockTargetStore(), runs, svc)

	summary, err := o.Migrate(context.Background(), "biz1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ProcessedCollections)
}

func TestAnalyze_MissingCollection(t *testing.T) {
	o := newTestOrchestrator(source.NewMockStore(), repositories.NewMockTargetStore(), nil, &fakeMapping{})

	_, err := o.Analyze(context.Background(), "biz1", "customers")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAnalyze_AcceptsQualifiedAndBareNames(t *testing.T) {
	src := source.NewMockStore()
	src.Collections["biz1_customers"] = []map[string]any{{"name": "Rahim Traders"}}
	o := newTestOrchestrator(src, repositories.NewMockTargetStore(), nil, &fakeMapping{})

	bare, err := o.Analyze(context.Background(), "biz1", "customers")
	require.NoError(t, err)
	qualified, err := o.Analyze(context.Background(), "biz1", "biz1_customers")
	require.NoError(t, err)

	assert.Equal(t, bare.DocumentCount, qualified.DocumentCount)
	assert.NotEmpty(t, bare.Fields)
}

func TestRuns_NilRepositoryReturnsNothing(t *testing.T) {
	o := newTestOrchestrator(source.NewMockStore(), repositories.NewMockTargetStore(), nil, &fakeMapping{})

	got, err := o.Runs(context.Background(), "biz1", 10)
	require.NoError(t, err)
	assert.Nil(t, got)
}
