// Package mysqlmirror copia el esquema CRM de Postgres (almacén vivo) a un espejo MySQL.
//
// El proceso es lineal: aplica el esquema MySQL con el ScriptRunner tolerante, copia
// cada tabla en orden de dependencias leyendo páginas de Postgres y haciendo upsert por lotes
// (INSERT ... ON DUPLICATE KEY UPDATE), y termina con una verificación por tabla que compara
// conteo y sello temporal máximo. Las filas borradas en Postgres no se borran del espejo:
// quedan como diferencia de conteo en el reporte.
package mysqlmirror

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/jhoicas/CRM-api/internal/infrastructure/migration"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

//go:embed schema.sql
var Schema string

const defaultBatchSize = 500

// DB subconjunto de *sql.DB usado en ambos extremos.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Options parámetros de una corrida.
type Options struct {
	Tables     []string // vacío = todas
	BatchSize  int
	VerifyOnly bool
}

// TableReport resultado por tabla.
type TableReport struct {
	Table      string `json:"table"`
	SourceRows int64  `json:"source_rows"`
	Copied     int64  `json:"copied"`
	Affected   int64  `json:"affected"` // filas afectadas según MySQL: 1 por alta, 2 por cambio, 0 si igual
	TargetRows int64  `json:"target_rows"`
	SourceMax  string `json:"source_max,omitempty"`
	TargetMax  string `json:"target_max,omitempty"`
	Mismatch   bool   `json:"mismatch"`
	Error      string `json:"error,omitempty"`
}

// Report resultado de la corrida.
type Report struct {
	Tables   []TableReport `json:"tables"`
	Duration time.Duration `json:"duration"`
}

// Mismatches cantidad de tablas cuyo conteo o sello máximo no coincide.
func (r Report) Mismatches() int {
	n := 0
	for _, t := range r.Tables {
		if t.Mismatch {
			n++
		}
	}
	return n
}

// Mirror copia Postgres → MySQL.
type Mirror struct {
	source       DB
	target       DB
	sourceSchema string
	schema       string
	log          *logger.Logger

	pg sq.StatementBuilderType
	my sq.StatementBuilderType
}

// New construye el espejo. source es Postgres (pgx stdlib), target es MySQL.
func New(source, target DB, log *logger.Logger) *Mirror {
	if log == nil {
		log = logger.Nop()
	}
	return &Mirror{
		source:       source,
		target:       target,
		sourceSchema: "public",
		schema:       Schema,
		log:          log.Component("mysqlmirror"),
		pg:           sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		my:           sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

// Run ejecuta la corrida completa (o solo la verificación).
// Un error de copia en una tabla queda en su reporte y la corrida continúa;
// solo un error de esquema la aborta.
func (m *Mirror) Run(ctx context.Context, opts Options) (Report, error) {
	start := time.Now()
	tables, err := SelectTables(opts.Tables)
	if err != nil {
		return Report{}, err
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	if !opts.VerifyOnly {
		runner := migration.NewScriptRunner(m.target, m.log)
		if _, err := runner.Run(ctx, "mysql_schema.sql", m.schema); err != nil {
			return Report{}, fmt.Errorf("mysqlmirror: esquema: %w", err)
		}
	}

	rep := Report{Tables: make([]TableReport, 0, len(tables))}
	for _, t := range tables {
		tr := TableReport{Table: t.Name}
		if !opts.VerifyOnly {
			if err := m.copyTable(ctx, t, batch, &tr); err != nil {
				tr.Error = err.Error()
				m.log.Error().Err(err).Str("table", t.Name).Msg("copia fallida")
			}
		}
		if err := m.verify(ctx, t, &tr); err != nil {
			tr.Error = err.Error()
			tr.Mismatch = true
		}
		m.log.Info().Str("table", t.Name).Int64("copied", tr.Copied).Int64("affected", tr.Affected).
			Int64("source", tr.SourceRows).Int64("target", tr.TargetRows).Bool("mismatch", tr.Mismatch).
			Msg("tabla procesada")
		rep.Tables = append(rep.Tables, tr)
		if ctx.Err() != nil {
			break
		}
	}
	rep.Duration = time.Since(start)
	return rep, ctx.Err()
}

// sourceColumns columnas de Postgres en orden ordinal.
func (m *Mirror) sourceColumns(ctx context.Context, table string) ([]Column, error) {
	query, args, err := m.pg.Select("column_name", "data_type", "udt_name").
		From("information_schema.columns").
		Where(sq.Eq{"table_schema": m.sourceSchema, "table_name": table}).
		OrderBy("ordinal_position").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := m.source.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("columnas de %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.DataType, &c.UDTName); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// targetColumns nombres de columnas existentes en MySQL.
func (m *Mirror) targetColumns(ctx context.Context, table string) (map[string]bool, error) {
	query, args, err := m.my.Select("column_name").
		From("information_schema.columns").
		Where("table_schema = DATABASE()").
		Where(sq.Eq{"table_name": table}).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := m.target.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("columnas destino de %s: %w", table, err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}

// shared columnas presentes en ambos lados, en el orden de Postgres.
func shared(src []Column, dst map[string]bool) (keep []Column, dropped []string) {
	for _, c := range src {
		if dst[c.Name] {
			keep = append(keep, c)
		} else {
			dropped = append(dropped, c.Name)
		}
	}
	return keep, dropped
}

func (m *Mirror) copyTable(ctx context.Context, t Table, batch int, tr *TableReport) error {
	src, err := m.sourceColumns(ctx, t.Name)
	if err != nil {
		return err
	}
	if len(src) == 0 {
		return fmt.Errorf("la tabla %s no existe en Postgres", t.Name)
	}
	dst, err := m.targetColumns(ctx, t.Name)
	if err != nil {
		return err
	}
	cols, dropped := shared(src, dst)
	if len(dropped) > 0 {
		m.log.Warn().Str("table", t.Name).Strs("columns", dropped).Msg("columnas sin equivalente en MySQL")
	}
	if len(cols) == 0 {
		return fmt.Errorf("la tabla %s no tiene columnas comunes", t.Name)
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
	}

	for offset := uint64(0); ; offset += uint64(batch) {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := m.readPage(ctx, t, cols, batch, offset)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		affected, err := m.insertBatch(ctx, t.Name, names, page)
		if err != nil {
			return fmt.Errorf("lote desde %d: %w", offset, err)
		}
		tr.Copied += int64(len(page))
		tr.Affected += affected
		if len(page) < batch {
			return nil
		}
	}
}

func (m *Mirror) readPage(ctx context.Context, t Table, cols []Column, limit int, offset uint64) ([][]any, error) {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = `"` + c.Name + `"`
	}
	query, args, err := m.pg.Select(names...).
		From(t.Name).
		OrderBy(t.OrderBy...).
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := m.source.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lectura de %s: %w", t.Name, err)
	}
	defer rows.Close()

	var page [][]any
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]any, len(cols))
		for i, c := range cols {
			v, err := coerce(c, raw[i])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name, c.Name, err)
			}
			row[i] = v
		}
		page = append(page, row)
	}
	return page, rows.Err()
}

// upsertClause reescribe todas las columnas con el valor entrante; una fila que cambió en
// Postgres queda al día en el espejo al re-ejecutar.
func upsertClause(cols []string) string {
	set := make([]string, len(cols))
	for i, c := range cols {
		set[i] = c + "=VALUES(" + c + ")"
	}
	return "ON DUPLICATE KEY UPDATE " + strings.Join(set, ",")
}

func (m *Mirror) insertBatch(ctx context.Context, table string, cols []string, page [][]any) (int64, error) {
	ins := m.my.Insert(table).Columns(cols...).Suffix(upsertClause(cols))
	for _, row := range page {
		ins = ins.Values(row...)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := m.target.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (m *Mirror) count(ctx context.Context, db DB, b sq.StatementBuilderType, table string) (int64, error) {
	query, args, err := b.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// maxStamp sello máximo en ambos lados, normalizado a UTC con microsegundos.
func (m *Mirror) maxStamp(ctx context.Context, t Table) (src, dst string, err error) {
	query, args, err := m.pg.Select(fmt.Sprintf("MAX(%q)", t.Stamp)).From(t.Name).ToSql()
	if err != nil {
		return "", "", err
	}
	var s sql.NullTime
	if err := m.source.QueryRowContext(ctx, query, args...).Scan(&s); err != nil {
		return "", "", fmt.Errorf("sello origen: %w", err)
	}
	if s.Valid {
		src = s.Time.UTC().Truncate(time.Microsecond).Format(mysqlDateTime)
	}

	query, args, err = m.my.Select(fmt.Sprintf("DATE_FORMAT(MAX(%s), '%%Y-%%m-%%d %%H:%%i:%%s.%%f')", quoteIdent(t.Stamp))).
		From(t.Name).ToSql()
	if err != nil {
		return "", "", err
	}
	var d sql.NullString
	if err := m.target.QueryRowContext(ctx, query, args...).Scan(&d); err != nil {
		return "", "", fmt.Errorf("sello destino: %w", err)
	}
	if d.Valid {
		ts, err := time.Parse(mysqlDateTime, d.String)
		if err != nil {
			return "", "", fmt.Errorf("sello destino %q: %w", d.String, err)
		}
		dst = ts.Format(mysqlDateTime)
	}
	return src, dst, nil
}

// verify compara conteo y sello máximo. El conteo delata filas borradas o faltantes;
// el sello, filas modificadas en Postgres que el espejo aún no tiene.
func (m *Mirror) verify(ctx context.Context, t Table, tr *TableReport) error {
	var err error
	if tr.SourceRows, err = m.count(ctx, m.source, m.pg, t.Name); err != nil {
		return fmt.Errorf("conteo origen: %w", err)
	}
	if tr.TargetRows, err = m.count(ctx, m.target, m.my, t.Name); err != nil {
		return fmt.Errorf("conteo destino: %w", err)
	}
	tr.Mismatch = tr.SourceRows != tr.TargetRows
	if t.Stamp == "" {
		return nil
	}
	if tr.SourceMax, tr.TargetMax, err = m.maxStamp(ctx, t); err != nil {
		return err
	}
	if tr.SourceMax != tr.TargetMax {
		tr.Mismatch = true
	}
	return nil
}

func quoteIdent(name string) string {
	return "`" + name + "`"
}
