package directory

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// columns whitelists the fields a Filter may reference.
var columns = map[Field]string{
	FieldZipcode:   "zipcode",
	FieldLastname:  "lastname",
	FieldSpecialty: "specialty",
	FieldGender:    "gender",
}

// SQLStore serves directory lookups from MySQL (production) or SQLite
// (local runs and tests).
type SQLStore struct {
	db     *sql.DB
	driver string
}

// MySQLConfig holds connection parts used when no DSN is given.
type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// DSN formats the parts as a go-sql-driver/mysql DSN.
func (c MySQLConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.DBName = c.DBName
	return cfg.FormatDSN()
}

// Open connects to the directory database and pings it.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s dsn must be provided", driver)
	}

	var (
		db  *sql.DB
		err error
	)
	switch strings.ToLower(driver) {
	case DriverSQLite, "sqlite3":
		driver = DriverSQLite
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		db, err = sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := sqlitePragmas(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	case DriverMySQL:
		db, err = sql.Open(DriverMySQL, dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &SQLStore{db: db, driver: driver}, nil
}

func sqlitePragmas(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies the embedded schema and seed files that have not been
// recorded in schema_migrations yet.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		// The MySQL driver rejects multi-statement Exec without
		// multiStatements=true, so run statements one at a time.
		for _, stmt := range splitStatements(string(content)) {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
			}
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	return 0
}

func splitStatements(content string) []string {
	var out []string
	for _, stmt := range strings.Split(content, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// buildQuery renders f as a parameterized SELECT. Values only ever travel as
// arguments; column names come from the whitelist.
func buildQuery(f Filter, limit int) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	for _, p := range f.Predicates {
		col, ok := columns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown filter field %q", p.Field)
		}
		if p.Op != OpEq {
			return "", nil, fmt.Errorf("unsupported operator %q", p.Op)
		}
		where = append(where, "UPPER("+col+") = UPPER(?)")
		args = append(args, p.Value)
	}

	q := "SELECT full_name, street, city, specialty FROM doctors"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id LIMIT ?"
	args = append(args, limit)
	return q, args, nil
}

func (s *SQLStore) Query(ctx context.Context, f Filter, limit int) ([]Doctor, error) {
	q, args, err := buildQuery(f, limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query doctors: %w", err)
	}
	defer rows.Close()

	doctors := make([]Doctor, 0)
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.FullName, &d.Street, &d.City, &d.Specialization); err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctors: %w", err)
	}
	return doctors, nil
}
