// mysqlsync copia las tablas del CRM desde PostgreSQL hacia el espejo MySQL y
// verifica conteos. Idempotente: las filas ya copiadas se omiten.
//
// Uso: go run ./cmd/mysqlsync [-tables leads,sales_dispositions] [-batch-size 500] [-verify-only]
//
// Sale con código 1 si alguna tabla falla o queda con conteos distintos.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jhoicas/CRM-api/internal/infrastructure/mysqlmirror"
	"github.com/jhoicas/CRM-api/pkg/config"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

func main() {
	var (
		tables     string
		batchSize  int
		verifyOnly bool
		logLevel   string
	)
	flag.StringVar(&tables, "tables", "", "tablas separadas por coma (vacío = todas)")
	flag.IntVar(&batchSize, "batch-size", 500, "filas por INSERT")
	flag.BoolVar(&verifyOnly, "verify-only", false, "solo comparar conteos, sin copiar")
	flag.StringVar(&logLevel, "log-level", "info", "nivel de log")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: logLevel, App: "mysqlsync"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := sql.Open("pgx", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir PostgreSQL")
	}
	defer source.Close()

	target, err := sql.Open("mysql", cfg.MySQL.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir MySQL")
	}
	defer target.Close()

	for name, db := range map[string]*sql.DB{"postgres": source, "mysql": target} {
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Str("db", name).Msg("ping")
		}
	}

	opts := mysqlmirror.Options{BatchSize: batchSize, VerifyOnly: verifyOnly}
	if tables != "" {
		for _, t := range strings.Split(tables, ",") {
			if t = strings.TrimSpace(t); t != "" {
				opts.Tables = append(opts.Tables, t)
			}
		}
	}

	report, err := mysqlmirror.New(source, target, log).Run(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("espejo MySQL")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)

	var bad []string
	for _, t := range report.Tables {
		if t.Mismatch || t.Error != "" {
			bad = append(bad, t.Table)
		}
	}
	if len(bad) > 0 {
		log.Error().Strs("tables", bad).Int("mismatches", report.Mismatches()).Msg("tablas con error o conteos distintos")
		os.Exit(1)
	}
}
