// Package testutil opens throwaway in-memory stores for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-records/internal/config"
	"github.com/jwalitptl/clinic-records/internal/model"
	"github.com/jwalitptl/clinic-records/internal/repository/sqlstore"
)

// NewStore opens an in-memory SQLite store with the schema in place. It is
// closed when the test ends.
func NewStore(t *testing.T, opts ...sqlstore.Option) *sqlstore.Store {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), config.DatabaseConfig{
		Driver: sqlstore.DriverSQLite,
		Path:   ":memory:",
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// FixedClock always returns at.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// Count returns the number of rows in table.
func Count(t *testing.T, store *sqlstore.Store, table string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, store.GetDB().Get(&n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)))
	return n
}

// Counts returns the visit, lab result and prescription row counts.
func Counts(t *testing.T, store *sqlstore.Store) [3]int64 {
	t.Helper()
	return [3]int64{
		Count(t, store, "medical_records"),
		Count(t, store, "test_results"),
		Count(t, store, "prescriptions"),
	}
}

// CreateTestPatient inserts a patient and returns its id.
func CreateTestPatient(t *testing.T, store *sqlstore.Store, name string) int64 {
	t.Helper()

	patient := &model.Patient{Name: name, Gender: "F", Phone: "0123456789", Address: "12 Test Street"}
	require.NoError(t, store.Patients().Create(context.Background(), patient))
	return patient.ID
}

// CreateTestCatalogEntry inserts a test type or medicine and returns its id.
func CreateTestCatalogEntry(t *testing.T, store *sqlstore.Store, kind model.CatalogKind, name string) int64 {
	t.Helper()

	entry := &model.CatalogEntry{Kind: kind, Name: name, Description: name + " description"}
	require.NoError(t, store.Catalogs().Create(context.Background(), entry))
	return entry.ID
}
