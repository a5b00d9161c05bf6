package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // driver "pgx" para database/sql
	goose "github.com/pressly/goose/v3"

	"github.com/jhoicas/CRM-api/internal/infrastructure/postgres/migrations"
)

// Comandos de migración soportados.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Migrate ejecuta un comando goose sobre las migraciones embebidas.
func Migrate(ctx context.Context, dsn, command string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("migrate: abrir conexión: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, db, ".")
		if errors.Is(err, goose.ErrNoNextVersion) {
			err = nil
		}
	case MigrateDown:
		err = goose.DownContext(ctx, db, ".")
	case MigrateStatus:
		goose.SetLogger(log.New(os.Stdout, "", 0))
		err = goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("migrate: comando desconocido %q (up|down|status)", command)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}
