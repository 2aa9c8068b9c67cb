// Package repositories provides data access to the target relational store
// and the run audit table.
package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgermap/ledgermap-engine/pkg/apperrors"
	"github.com/ledgermap/ledgermap-engine/pkg/catalog"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

// TargetStore is the write path into the target relational schema. Batch
// size is bounded by the caller; the store performs no batching of its own.
type TargetStore interface {
	// SelectByColumn fetches rows of table, scoped to one business, whose
	// column value is in values.
	SelectByColumn(ctx context.Context, table, column, businessID string, values []string) ([]map[string]any, error)

	// InsertRows inserts rows and returns how many were written.
	InsertRows(ctx context.Context, table string, rows []models.TransformedRecord) (int, error)

	// UpdateRow updates the row identified by keyColumn within the row's
	// business scope.
	UpdateRow(ctx context.Context, table string, row models.TransformedRecord, keyColumn string) error
}

type pgTargetStore struct {
	pool *pgxpool.Pool
}

// NewTargetStore creates a pgx-backed target store.
func NewTargetStore(pool *pgxpool.Pool) TargetStore {
	return &pgTargetStore{pool: pool}
}

var _ TargetStore = (*pgTargetStore)(nil)

func (s *pgTargetStore) SelectByColumn(ctx context.Context, table, column, businessID string, values []string) ([]map[string]any, error) {
	if !catalog.HasTable(table) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownTable, table)
	}
	if !catalog.HasColumn(table, column) {
		return nil, fmt.Errorf("column %q not in table %q", column, table)
	}
	if len(values) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1 AND %s = ANY($2)`,
		strings.Join(catalog.Columns(table), ", "), table, catalog.BusinessIDColumn, column,
	)

	rows, err := s.pool.Query(ctx, query, businessID, values)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by %s: %w", table, column, err)
	}
	defer rows.Close()

	var out []map[string]any
	fds := rows.FieldDescriptions()
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s row: %w", table, err)
		}
		m := make(map[string]any, len(fds))
		for i, fd := range fds {
			m[string(fd.Name)] = vals[i]
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", table, err)
	}
	return out, nil
}

func (s *pgTargetStore) InsertRows(ctx context.Context, table string, rows []models.TransformedRecord) (int, error) {
	if !catalog.HasTable(table) {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrUnknownTable, table)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	columns := insertColumns(table, rows)
	if len(columns) == 0 {
		return 0, fmt.Errorf("no insertable columns for table %q", table)
	}

	query, args := buildInsert(table, columns, rows)
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *pgTargetStore) UpdateRow(ctx context.Context, table string, row models.TransformedRecord, keyColumn string) error {
	if !catalog.HasTable(table) {
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownTable, table)
	}
	keyValue, ok := row[keyColumn]
	if !ok {
		return fmt.Errorf("row has no key column %q", keyColumn)
	}

	var sets []string
	var args []any
	for _, column := range catalog.Columns(table) {
		if column == keyColumn || column == catalog.BusinessIDColumn || column == catalog.AutoIDColumn(table) {
			continue
		}
		v, present := row[column]
		if !present || v == nil {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, row.BusinessID())
	businessArg := len(args)
	args = append(args, keyValue)
	keyArg := len(args)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $%d AND %s = $%d`,
		table, strings.Join(sets, ", "), catalog.BusinessIDColumn, businessArg, keyColumn, keyArg)

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return nil
}

// insertColumns returns the catalog-ordered union of columns present in the
// batch, with the auto-assigned surrogate key stripped so the store assigns
// it.
func insertColumns(table string, rows []models.TransformedRecord) []string {
	present := make(map[string]bool)
	for _, row := range rows {
		for k, v := range row {
			if v != nil {
				present[k] = true
			}
		}
	}

	autoID := catalog.AutoIDColumn(table)
	var columns []string
	for _, c := range catalog.Columns(table) {
		if c == autoID {
			continue
		}
		if present[c] {
			columns = append(columns, c)
		}
	}
	sort.Strings(columns)
	return columns
}

// buildInsert renders a multi-row parameterized INSERT. Only whitelisted
// catalog tables and columns ever reach this point.
func buildInsert(table string, columns []string, rows []models.TransformedRecord) (string, []any) {
	var args []any
	valueGroups := make([]string, 0, len(rows))
	for _, row := range rows {
		placeholders := make([]string, len(columns))
		for i, column := range columns {
			args = append(args, row[column])
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		valueGroups = append(valueGroups, "("+strings.Join(placeholders, ", ")+")")
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s`,
		table, strings.Join(columns, ", "), strings.Join(valueGroups, ", "))
	return query, args
}
