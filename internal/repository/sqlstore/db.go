package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/jwalitptl/clinic-records/internal/config"
	"github.com/jwalitptl/clinic-records/internal/repository"
	"github.com/jwalitptl/clinic-records/pkg/metrics"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Option configures a Store.
type Option func(*BaseRepository)

// WithClock replaces time.Now for every created_date the store writes.
func WithClock(now func() time.Time) Option {
	return func(r *BaseRepository) {
		r.now = now
	}
}

// WithMetrics records database timings and connection counts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *BaseRepository) {
		r.metrics = m
	}
}

// Store owns the single database handle used by every repository.
type Store struct {
	BaseRepository
}

// DSN builds the driver-specific connection string.
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return cfg.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
	case DriverPostgres:
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open connects to the configured database and creates any missing tables.
func Open(ctx context.Context, cfg config.DatabaseConfig, opts ...Option) (*Store, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := New(db, opts...)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s.metrics.SetConnections(db.Stats().OpenConnections)

	return s, nil
}

// New wraps an already open handle without touching the schema.
func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{BaseRepository: NewBaseRepository(db)}
	for _, opt := range opts {
		opt(&s.BaseRepository)
	}
	return s
}

func (s *Store) Close() error {
	s.metrics.SetConnections(0)
	return s.db.Close()
}

func (s *Store) Patients() repository.PatientRepository {
	return &patientRepository{BaseRepository: s.BaseRepository}
}

func (s *Store) MedicalRecords() repository.MedicalRecordRepository {
	return &medicalRecordRepository{BaseRepository: s.BaseRepository}
}

func (s *Store) Catalogs() repository.CatalogRepository {
	return &catalogRepository{BaseRepository: s.BaseRepository}
}

func (s *Store) Doctors() repository.DoctorRepository {
	return &doctorRepository{BaseRepository: s.BaseRepository}
}

func (s *Store) Stats() repository.StatsRepository {
	return &statsRepository{BaseRepository: s.BaseRepository}
}

func dialectFor(driver string) goqu.DialectWrapper {
	if driver == DriverPostgres {
		return goqu.Dialect("postgres")
	}
	return goqu.Dialect("sqlite3")
}
