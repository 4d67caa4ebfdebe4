package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"surfsup-server/internal/migrate"
)

const usage = `usage: dbtool <command>
  migrate                                   create or upgrade the climate schema
  seed <stations.csv> <measurements.csv>    migrate, then load both CSV files
`

var errUsage = errors.New("invalid usage")

func main() {
	dbPath := os.Getenv("SQLITE_PATH")
	if dbPath == "" {
		dbPath = "Resources/hawaii.sqlite"
	}

	if err := run(context.Background(), filepath.Clean(dbPath), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "dbtool: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dbPath string, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "migrate":
		if len(args) != 1 {
			return errUsage
		}
	case "seed":
		if len(args) != 3 {
			return errUsage
		}
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	conn, err := open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	if err := migrate.Run(ctx, conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if args[0] == "migrate" {
		fmt.Fprintln(stdout, "migrations applied")
		return nil
	}

	stations, err := seedFile(ctx, conn, args[1], migrate.SeedStations)
	if err != nil {
		return err
	}
	measurements, err := seedFile(ctx, conn, args[2], migrate.SeedMeasurements)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "seeded %d stations, %d measurements\n", stations, measurements)
	return nil
}

type seedFunc func(ctx context.Context, db *sql.DB, r io.Reader) (int, error)

func seedFile(ctx context.Context, conn *sql.DB, path string, seed seedFunc) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	n, err := seed(ctx, conn, f)
	if err != nil {
		return 0, fmt.Errorf("seed %s: %w", path, err)
	}
	return n, nil
}

func open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", buildDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// buildDSN keeps the rollback journal so the server can open the file with
// mode=ro and no side files.
func buildDSN(dbPath string) string {
	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=DELETE",
	}
	if strings.HasPrefix(dbPath, "file:") {
		sep := "?"
		if strings.Contains(dbPath, "?") {
			sep = "&"
		}
		return dbPath + sep + strings.Join(params, "&")
	}
	return fmt.Sprintf("file:%s?%s", dbPath, strings.Join(params, "&"))
}
