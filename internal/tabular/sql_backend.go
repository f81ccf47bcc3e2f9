package tabular

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/internal/normalizer"
	"github.com/siniestros-lookup/internal/results"
)

// DefaultTable tên bảng mặc định
const DefaultTable = "siniestros"

// Dialect khác biệt giữa các SQL engine
type Dialect struct {
	Driver string
	dollar bool
}

var (
	SQLite   = Dialect{Driver: "sqlite"}
	Postgres = Dialect{Driver: "pgx", dollar: true}
)

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d.dollar {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// DialectFor chọn dialect theo Kind
func DialectFor(kind Kind) (Dialect, error) {
	switch kind {
	case KindSQLite:
		return SQLite, nil
	case KindPostgres:
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("backend %q is not SQL", kind)
}

// Open mở kết nối database/sql cho dialect.
func Open(d Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Driver, err)
	}
	if d == SQLite {
		// an in-memory database exists per connection
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// recordColumns maps record fields to table columns, in models.FieldNames order.
var recordColumns = []string{
	"fecha", "hora", "region", "comuna", "calleuno", "calledos", "urbano_rural",
	"fallecidos", "graves", "m_grave", "leves", "ilesos", "siniestros", "causas",
}

var derivedColumns = []string{"region_slug", "comuna_slug", "calleuno_norm", "calledos_norm"}

// SQLBackend tra cứu siniestros bằng SQL. Street filters run on the
// canonical street columns written by LoadRecords.
type SQLBackend struct {
	db      *sql.DB
	dialect Dialect
	table   string
	logger  *zap.Logger
}

// NewSQLBackend tạo mới SQLBackend
func NewSQLBackend(db *sql.DB, dialect Dialect, table string, logger *zap.Logger) *SQLBackend {
	if table == "" {
		table = DefaultTable
	}
	return &SQLBackend{db: db, dialect: dialect, table: table, logger: logger}
}

// Resolve mirrors the pack resolver's statuses. Two-street matches are
// substring matches on either street order and report StatusFuzzy.
// Rows come back newest first.
func (b *SQLBackend) Resolve(ctx context.Context, q models.Query) (*models.Resolution, error) {
	q = q.Normalized()
	if !q.Complete() {
		return models.NewResolution(models.StatusNeedsInput, nil), nil
	}

	regionSlug := q.Region
	districtSlug := normalizer.Slug(q.District)

	var present int
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE region_slug = %s AND comuna_slug = %s",
		b.table, b.dialect.Placeholder(1), b.dialect.Placeholder(2))
	if err := b.db.QueryRowContext(ctx, countSQL, regionSlug, districtSlug).Scan(&present); err != nil {
		return nil, fmt.Errorf("count district rows: %w", err)
	}
	if present == 0 {
		return models.NewResolution(models.StatusNoData, nil), nil
	}

	where := []string{
		"region_slug = " + b.dialect.Placeholder(1),
		"comuna_slug = " + b.dialect.Placeholder(2),
	}
	args := []any{regionSlug, districtSlug}
	bind := func(v string) string {
		args = append(args, "%"+v+"%")
		return b.dialect.Placeholder(len(args))
	}

	a := normalizer.NormStreet(q.StreetA)
	c := normalizer.NormStreet(q.StreetB)
	status := models.StatusFuzzy
	switch {
	case q.StreetA != "" && q.StreetB != "":
		if a == "" || c == "" {
			return models.NewResolution(models.StatusNoMatch, nil), nil
		}
		where = append(where, fmt.Sprintf(
			"((calleuno_norm LIKE %s AND calledos_norm LIKE %s) OR (calleuno_norm LIKE %s AND calledos_norm LIKE %s))",
			bind(a), bind(c), bind(c), bind(a)))
	default:
		s := a
		if q.StreetA == "" {
			s = c
		}
		if s == "" {
			return models.NewResolution(models.StatusNoMatch, nil), nil
		}
		status = models.StatusSingleStreet
		where = append(where, fmt.Sprintf("(calleuno_norm LIKE %s OR calledos_norm LIKE %s)", bind(s), bind(s)))
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY fecha DESC, hora DESC",
		strings.Join(recordColumns, ", "), b.table, strings.Join(where, " AND "))

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []models.AccidentRecord
	for rows.Next() {
		var rec models.AccidentRecord
		var vals [14]sql.NullString
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Fecha = models.Cell(vals[0].String)
		rec.Hora = models.Cell(vals[1].String)
		rec.Region = models.Cell(vals[2].String)
		rec.Comuna = models.Cell(vals[3].String)
		rec.Calleuno = models.Cell(vals[4].String)
		rec.Calledos = models.Cell(vals[5].String)
		rec.UrbanoRural = models.Cell(vals[6].String)
		rec.Fallecidos = models.Cell(vals[7].String)
		rec.Graves = models.Cell(vals[8].String)
		rec.MGrave = models.Cell(vals[9].String)
		rec.Leves = models.Cell(vals[10].String)
		rec.Ilesos = models.Cell(vals[11].String)
		rec.Siniestros = models.Cell(vals[12].String)
		rec.Causas = models.Cell(vals[13].String)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	b.logger.Debug("SQL lookup",
		zap.String("district", districtSlug),
		zap.Int("rows", len(out)))

	if len(out) == 0 {
		return models.NewResolution(models.StatusNoMatch, nil), nil
	}
	res := models.NewResolution(status, results.Dedup(out))
	if status == models.StatusFuzzy {
		res.InterpretedA, res.InterpretedB = a, c
	} else {
		res.InterpretedA = q.StreetA + q.StreetB
	}
	res.Message = res.DefaultMessage()
	return res, nil
}
