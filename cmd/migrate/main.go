package main

import (
	"database/sql"
	"errors"
	"os"
	"strconv"
	"strings"

	"appointment-dashboard/config"
	"appointment-dashboard/internal/infrastructure/database"
	"appointment-dashboard/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

// Usage:
//
//	migrate            apply every pending migration
//	migrate down       roll back every migration
//	migrate force <v>  mark version v as applied without running it
func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		cfg, err := config.LoadDBConfig()
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		if !cfg.Enabled() {
			logrus.Fatal("DATABASE_URL or DB_HOST is required")
		}
		databaseURL = database.URL(cfg)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logrus.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logrus.Fatalf("ping db: %v", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		logrus.Fatalf("db driver: %v", err)
	}

	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		logrus.Fatalf("source driver: %v", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		logrus.Fatalf("create migrator: %v", err)
	}
	defer func() { _, _ = m.Close() }()

	command := ""
	if len(os.Args) >= 2 {
		command = os.Args[1]
	}

	switch command {
	case "force":
		if len(os.Args) < 3 {
			logrus.Fatal("force requires a version")
		}
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			logrus.Fatalf("invalid version: %v", err)
		}
		if err := m.Force(version); err != nil {
			logrus.Fatalf("force version: %v", err)
		}
		logrus.Infof("Forced version to %d", version)
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logrus.Fatalf("migrate down: %v", err)
		}
		logrus.Info("Migrations rolled back")
	case "", "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logrus.Fatalf("migrate up: %v", err)
		}
		logrus.Info("Migrations complete")
	default:
		logrus.Fatalf("unknown command %q", command)
	}
}
