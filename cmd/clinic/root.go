package main

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-records/internal/config"
	"github.com/jwalitptl/clinic-records/internal/repository/sqlstore"
	"github.com/jwalitptl/clinic-records/internal/service/audit"
	"github.com/jwalitptl/clinic-records/internal/service/catalog"
	"github.com/jwalitptl/clinic-records/internal/service/doctor"
	"github.com/jwalitptl/clinic-records/internal/service/patient"
	"github.com/jwalitptl/clinic-records/internal/service/stats"
	"github.com/jwalitptl/clinic-records/internal/service/visit"
	"github.com/jwalitptl/clinic-records/pkg/logger"
	"github.com/jwalitptl/clinic-records/pkg/metrics"
	"github.com/jwalitptl/clinic-records/pkg/security"
	"github.com/jwalitptl/clinic-records/pkg/validator"
)

// app holds everything one CLI invocation needs. It is populated before any
// subcommand runs and closed after it returns.
type app struct {
	cfgFile string

	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	store   *sqlstore.Store
	out     io.Writer

	patients patient.PatientService
	visits   visit.VisitService
	catalogs catalog.CatalogService
	doctors  doctor.DoctorService
	stats    stats.StatsService
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinic",
		Short: "Patient, visit and prescription records for a small clinic",
		Long: `clinic keeps patient registrations, visit records with their lab results
and prescriptions, and the test and medicine catalogs in a single database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Global config flag, available for all commands.
	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file path (default ./config.yaml or ./config/config.yaml)")

	cmd.AddCommand(newInitCommand(a))
	cmd.AddCommand(newPatientCommand(a))
	cmd.AddCommand(newVisitCommand(a))
	cmd.AddCommand(newLabCommand(a))
	cmd.AddCommand(newPrescriptionCommand(a))
	cmd.AddCommand(newCatalogCommand(a))
	cmd.AddCommand(newDoctorCommand(a))
	cmd.AddCommand(newStatsCommand(a))

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg
	a.out = cmd.OutOrStdout()

	a.log = logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     cmd.ErrOrStderr(),
		File: logger.FileConfig{
			Enabled:    cfg.Logging.File.Enabled,
			Path:       cfg.Logging.File.Path,
			MaxSizeMB:  cfg.Logging.File.MaxSizeMB,
			MaxBackups: cfg.Logging.File.MaxBackups,
			MaxAgeDays: cfg.Logging.File.MaxAgeDays,
			Compress:   cfg.Logging.File.Compress,
		},
	}).WithFields(map[string]interface{}{
		"action_id": uuid.NewString(),
		"command":   cmd.CommandPath(),
	})

	a.metrics = metrics.New("clinic")

	store, err := sqlstore.Open(cmd.Context(), cfg.Database, sqlstore.WithMetrics(a.metrics))
	if err != nil {
		a.log.Error(err, "failed to open store", "driver", cfg.Database.Driver)
		return err
	}
	a.store = store

	v := validator.New()
	auditor := audit.NewService(a.log, a.metrics)

	a.patients = patient.NewService(store.Patients(), v, auditor)
	a.visits = visit.NewService(store.MedicalRecords(), store, v, auditor)
	a.catalogs = catalog.NewService(store.Catalogs(), v, auditor, a.metrics, cfg.Catalog.CacheTTL)
	a.doctors = doctor.NewService(store.Doctors(), security.NewBcryptHasher(cfg.Security.BcryptCost), v, auditor)
	a.stats = stats.NewService(store.Stats(), auditor)

	return nil
}

// close releases the store and flushes metrics. Safe to call when setup
// never ran or failed part way.
func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Error(err, "failed to close store")
		}
		a.store = nil
	}
	if a.cfg != nil {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.log.Error(err, "failed to write metrics textfile", "path", a.cfg.Metrics.Textfile)
		}
	}
}

func newInitCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the store already ensured the schema.
			location := a.cfg.Database.Path
			if a.cfg.Database.Driver == sqlstore.DriverPostgres {
				location = a.cfg.Database.Name
			}
			fmt.Fprintf(a.out, "Database %s (%s) is ready.\n", location, a.cfg.Database.Driver)
			return nil
		},
	}
}
