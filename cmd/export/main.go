// Package main is a CLI that exports recorded marks as CSV, portal-wide or
// for one student.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/grade-portal/grade-portal/config"
	"github.com/grade-portal/grade-portal/internal/application/report"
	"github.com/grade-portal/grade-portal/internal/infrastructure/persistence/postgres"
	"github.com/grade-portal/grade-portal/pkg/logger"
)

func main() {
	studentID := flag.Int64("student", 0, "export a single student's marks (0 = all)")
	outPath := flag.String("o", "", "output file (default stdout)")
	timeout := flag.Duration("timeout", 30*time.Second, "export timeout")
	flag.Parse()

	_ = godotenv.Load()

	log := logger.Default().With(logger.Component("export"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", logger.Err(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := connect(ctx, cfg)
	if err != nil {
		log.Fatal("failed to connect to postgres", logger.Err(err))
	}
	defer conn.Close()

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal("failed to create output file", logger.Err(err))
		}
		defer f.Close()
		out = f
	}

	exporter := report.NewExporter(postgres.NewMarkRepository(conn))

	if *studentID > 0 {
		err = exporter.ExportStudent(ctx, out, *studentID)
	} else {
		err = exporter.ExportAll(ctx, out)
	}
	if err != nil {
		log.Fatal("export failed", logger.Err(err))
	}
}

func connect(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	if cfg.Database.URL != "" {
		return postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	}

	pgCfg := postgres.DefaultConfig()
	pgCfg.Host = cfg.Database.Host
	pgCfg.Port = cfg.Database.Port
	pgCfg.User = cfg.Database.User
	pgCfg.Password = cfg.Database.Password
	pgCfg.Database = cfg.Database.Name
	pgCfg.SSLMode = cfg.Database.SSLMode

	return postgres.NewConnection(ctx, pgCfg)
}
