package sqlstore

import (
	"context"
	"fmt"
	"strings"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS patients (
		id {{pk}},
		name TEXT NOT NULL,
		birth_date TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		created_date TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS medical_records (
		id {{pk}},
		patient_id {{fk}} NOT NULL REFERENCES patients (id),
		visit_date TEXT NOT NULL,
		diagnosis TEXT NOT NULL,
		symptoms TEXT NOT NULL DEFAULT '',
		treatment TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		doctor_name TEXT NOT NULL DEFAULT '',
		created_date TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS test_types (
		id {{pk}},
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS test_results (
		id {{pk}},
		record_id {{fk}} NOT NULL REFERENCES medical_records (id),
		test_type_id {{fk}} NOT NULL REFERENCES test_types (id),
		result TEXT NOT NULL,
		test_date TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS medicine_types (
		id {{pk}},
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS prescriptions (
		id {{pk}},
		record_id {{fk}} NOT NULL REFERENCES medical_records (id),
		medicine_id {{fk}} NOT NULL REFERENCES medicine_types (id),
		dosage TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		instructions TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS doctors (
		id {{pk}},
		full_name TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_date TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_medical_records_patient ON medical_records (patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_test_results_record ON test_results (record_id)`,
	`CREATE INDEX IF NOT EXISTS idx_prescriptions_record ON prescriptions (record_id)`,
}

func schemaReplacer(driver string) *strings.Replacer {
	if driver == DriverPostgres {
		return strings.NewReplacer("{{pk}}", "BIGSERIAL PRIMARY KEY", "{{fk}}", "BIGINT")
	}
	return strings.NewReplacer("{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT", "{{fk}}", "INTEGER")
}

// EnsureSchema creates every table and index that does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	r := schemaReplacer(s.db.DriverName())
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
