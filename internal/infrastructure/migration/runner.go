// Package migration ejecuta scripts SQL sentencia por sentencia sobre Postgres o MySQL.
//
// Los errores de objeto duplicado (columna, tabla, índice, constraint, clave) no son
// fatales: se registran y la ejecución continúa, de modo que correr el mismo script dos
// veces termina sin error. Cualquier otro error detiene la ejecución; las sentencias ya
// aplicadas no se revierten.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/CRM-api/pkg/logger"
)

// Códigos de "ya existe" tolerados.
var (
	pgDuplicateCodes = map[string]bool{
		"42701": true, // duplicate_column
		"42P07": true, // duplicate_table
		"42710": true, // duplicate_object
		"42P06": true, // duplicate_schema
		"23505": true, // unique_violation (seed repetido)
	}
	mysqlDuplicateCodes = map[uint16]bool{
		1050: true, // ER_TABLE_EXISTS_ERROR
		1060: true, // ER_DUP_FIELDNAME
		1061: true, // ER_DUP_KEYNAME
		1062: true, // ER_DUP_ENTRY
		1826: true, // ER_FK_DUP_NAME
	}
)

// IsDuplicate indica si err es un error de objeto ya existente.
func IsDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgDuplicateCodes[pgErr.Code]
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return mysqlDuplicateCodes[myErr.Number]
	}
	return false
}

// Execer subconjunto de *sql.DB / *sql.Conn usado por el runner.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// StatementError error fatal en la sentencia Index (base 0) del script.
type StatementError struct {
	Script    string
	Index     int
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("%s: sentencia %d (%s): %v", e.Script, e.Index+1, preview(e.Statement), e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// Report resumen de una ejecución.
type Report struct {
	Script   string
	Total    int
	Applied  int
	Skipped  int
	Duration time.Duration
}

// ScriptRunner ejecuta scripts completos.
type ScriptRunner struct {
	db  Execer
	log *logger.Logger
}

// NewScriptRunner construye el runner.
func NewScriptRunner(db Execer, log *logger.Logger) *ScriptRunner {
	if log == nil {
		log = logger.Nop()
	}
	return &ScriptRunner{db: db, log: log.Component("migration")}
}

// Run divide el script y ejecuta cada sentencia en orden.
// Devuelve el reporte parcial junto con un *StatementError si alguna sentencia falla.
func (r *ScriptRunner) Run(ctx context.Context, name, script string) (Report, error) {
	start := time.Now()
	stmts := SplitStatements(script)
	rep := Report{Script: name, Total: len(stmts)}

	for i, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			rep.Duration = time.Since(start)
			return rep, &StatementError{Script: name, Index: i, Statement: stmt, Err: err}
		}
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			if IsDuplicate(err) {
				rep.Skipped++
				r.log.Warn().Err(err).Str("script", name).Int("statement", i+1).Msg("objeto ya existe, se omite")
				continue
			}
			rep.Duration = time.Since(start)
			r.log.Error().Err(err).Str("script", name).Int("statement", i+1).Str("sql", preview(stmt)).Msg("migración abortada")
			return rep, &StatementError{Script: name, Index: i, Statement: stmt, Err: err}
		}
		rep.Applied++
	}
	rep.Duration = time.Since(start)
	r.log.Info().Str("script", name).Int("applied", rep.Applied).Int("skipped", rep.Skipped).
		Dur("duration", rep.Duration).Msg("script aplicado")
	return rep, nil
}

func preview(stmt string) string {
	const max = 80
	r := []rune(stmt)
	if len(r) <= max {
		return stmt
	}
	return string(r[:max]) + "…"
}
