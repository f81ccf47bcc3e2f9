package tabular

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/internal/normalizer"
)

// CreateTable tạo bảng và index nếu chưa có
func CreateTable(ctx context.Context, db *sql.DB, table string) error {
	if table == "" {
		table = DefaultTable
	}
	cols := make([]string, 0, len(recordColumns)+len(derivedColumns))
	for _, c := range append(append([]string{}, recordColumns...), derivedColumns...) {
		cols = append(cols, c+" TEXT NOT NULL DEFAULT ''")
	}
	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(cols, ", ")),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_district_idx ON %s (region_slug, comuna_slug)", table, table),
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// LoadRecords creates the table if needed and inserts records in one
// transaction. It returns the number of rows written.
func LoadRecords(ctx context.Context, db *sql.DB, d Dialect, table string, records []models.AccidentRecord) (int, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := CreateTable(ctx, db, table); err != nil {
		return 0, err
	}

	all := append(append([]string{}, recordColumns...), derivedColumns...)
	marks := make([]string, len(all))
	for i := range all {
		marks[i] = d.Placeholder(i + 1)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(all, ", "), strings.Join(marks, ", "))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		args := make([]any, 0, len(all))
		for _, v := range rec.Values() {
			args = append(args, v)
		}
		args = append(args,
			normalizer.Slug(string(rec.Region)),
			normalizer.Slug(string(rec.Comuna)),
			normalizer.NormStreet(string(rec.Calleuno)),
			normalizer.NormStreet(string(rec.Calledos)),
		)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return i, fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}
