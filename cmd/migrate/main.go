package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"chainfly/internal/config"
	"chainfly/internal/logger"
)

const usage = "Usage: migrate [-path dir] [up|down|steps N|force V|version]"

func main() {
	dir := flag.String("path", "db/migrations", "migrations directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	zlog, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer zlog.Sync() //nolint:errcheck

	if flag.NArg() < 1 {
		fmt.Println(usage)
		os.Exit(1)
	}

	if err := run(flag.Args(), "file://"+*dir, migrateURL(cfg.DB.DSN()), zlog); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}
}

// migrateURL switches the DSN scheme to the pgx v5 driver registered above.
func migrateURL(dsn string) string {
	return "pgx5://" + strings.TrimPrefix(dsn, "postgres://")
}

func run(args []string, sourceURL, databaseURL string, zlog *zap.Logger) error {
	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	defer m.Close()

	switch cmd := args[0]; cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("up: %w", err)
		}
		zlog.Info("migrations applied")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("down: %w", err)
		}
		zlog.Info("migrations reverted")

	case "steps":
		n, err := intArg(args, "steps")
		if err != nil {
			return err
		}
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("steps %d: %w", n, err)
		}
		zlog.Info("migration steps applied", zap.Int("steps", n))

	case "force":
		v, err := intArg(args, "force")
		if err != nil {
			return err
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force %d: %w", v, err)
		}
		zlog.Info("migration version forced", zap.Int("version", v))

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("reading version: %w", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		return fmt.Errorf("unknown command %q; %s", cmd, usage)
	}
	return nil
}

func intArg(args []string, cmd string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a number argument", cmd)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid %s argument: %w", cmd, err)
	}
	return n, nil
}
