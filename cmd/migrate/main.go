package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/migrations"
	"go.uber.org/zap"
)

const defaultCreateDir = "migrations"

var errUsage = errors.New("usage")

type options struct {
	path string
	args []string
	log  *zap.Logger
}

// arg returns the i-th positional argument after the command
func (o options) arg(i int, what string) (string, error) {
	if len(o.args) <= i {
		return "", fmt.Errorf("%w: %s required", errUsage, what)
	}
	return o.args[i], nil
}

func main() {
	path := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	command := flag.Arg(0)
	opts := options{path: *path, args: flag.Args(), log: log}

	switch command {
	case "create":
		err = createMigration(opts)
	case "list":
		err = listMigrations(opts)
	case "up", "down", "step", "version", "force":
		err = withMigrator(opts, func(m *migration.Migrator) error {
			return runDatabaseCommand(m, command, opts)
		})
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	if err != nil {
		if errors.Is(err, errUsage) {
			log.Error("Invalid invocation", zap.String("command", command), zap.Error(err))
			printUsage()
			os.Exit(2)
		}
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func createMigration(opts options) error {
	name, err := opts.arg(1, "migration name")
	if err != nil {
		return err
	}
	dir := opts.path
	if dir == "" {
		dir = defaultCreateDir
	}
	description, _ := opts.arg(2, "description")

	mf, err := migration.CreateMigration(dir, name, description)
	if err != nil {
		return err
	}
	opts.log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func listMigrations(opts options) error {
	var source fs.FS = migrations.FS
	if opts.path != "" {
		source = os.DirFS(opts.path)
	}
	names, err := migration.ListMigrations(source)
	if err != nil {
		return err
	}
	opts.log.Info("Available migrations", zap.Int("count", len(names)))
	for _, name := range names {
		fmt.Println("  -", name)
	}
	return nil
}

// withMigrator connects with the service's database settings and hands a
// migrator to fn
func withMigrator(opts options, fn func(*migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, opts.path, opts.log)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}

func runDatabaseCommand(m *migration.Migrator, command string, opts options) error {
	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(opts, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "force":
		v, err := intArg(opts, "version")
		if err != nil {
			return err
		}
		return m.Force(v)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			opts.log.Info("No migrations applied")
			return nil
		}
		opts.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, command)
}

func intArg(opts options, what string) (int, error) {
	raw, err := opts.arg(1, what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", errUsage, what, raw)
	}
	return n, nil
}

func printUsage() {
	fmt.Println(`Storefront database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  version               Show current migration version
  force <version>       Force set migration version (repairs a dirty state)
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Migrations directory (default: embedded migrations; ./migrations for create)
  -log-level string     Log level: debug, info, warn, error (default: info)

Database settings come from config.toml or SHOP_DATABASE_* environment variables.`)
}
