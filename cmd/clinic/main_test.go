package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
)

func writeTestConfig(t *testing.T) (cfgPath, metricsPath string) {
	t.Helper()
	dir := t.TempDir()
	metricsPath = filepath.Join(dir, "clinic.prom")
	cfgPath = filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`
database:
  driver: sqlite
  path: %s
logging:
  level: error
metrics:
  textfile: %s
`, filepath.Join(dir, "clinic.db"), metricsPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cfgPath, metricsPath
}

// run executes one CLI invocation the way main does.
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()

	a := &app{}
	root := newRootCommand(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := root.Execute()
	a.close()
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	require.NoError(t, err, "clinic %v", args)
	return out
}

func TestVisitWorkflow(t *testing.T) {
	cfg, metricsPath := writeTestConfig(t)

	assert.Contains(t, mustRun(t, cfg, "init"), "is ready")
	assert.Contains(t, mustRun(t, cfg, "catalog", "add", "test_type", "--name", "CBC"), "test_type 1 added")
	assert.Contains(t, mustRun(t, cfg, "catalog", "add", "medicine", "--name", "Paracetamol"), "medicine 1 added")
	assert.Contains(t, mustRun(t, cfg, "patient", "add", "--name", "Asha Rao", "--phone", "9876543210"), "Patient 1 registered")

	out := mustRun(t, cfg, "visit", "save", "--patient", "1", "--date", "01/02/2024", "--diagnosis", "Fever",
		"--lab", "1:Normal", "--rx", "1:500mg:12:After food")
	assert.Contains(t, out, "Visit 1 saved with 1 lab result(s) and 1 prescription(s)")

	_, err := run(t, cfg, "visit", "save", "--patient", "1", "--date", "01/02/2024", "--diagnosis", "Fever",
		"--lab", "1:Normal", "--rx", "1:500mg:twelve")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	assert.Equal(t, "invalid input: quantity must be a positive integer", describe(err))

	out = mustRun(t, cfg, "visit", "show", "1")
	assert.Contains(t, out, "Asha Rao")
	assert.Contains(t, out, "CBC")
	assert.Contains(t, out, "Paracetamol")
	assert.Contains(t, out, "After food")

	out = mustRun(t, cfg, "visit", "list", "1")
	assert.Contains(t, out, "01/02/2024")
	assert.Equal(t, 1, strings.Count(out, "Fever"), "the rejected visit must not exist")

	_, err = run(t, cfg, "patient", "delete", "1")
	assert.True(t, apperrors.Is(err, apperrors.ErrDependencyExists))
	assert.Contains(t, describe(err), "cannot delete")

	_, err = run(t, cfg, "catalog", "delete", "medicine", "1")
	assert.True(t, apperrors.Is(err, apperrors.ErrDependencyExists))

	mustRun(t, cfg, "lab", "delete", "1")
	mustRun(t, cfg, "lab", "delete", "1")
	mustRun(t, cfg, "rx", "delete", "1")
	mustRun(t, cfg, "visit", "delete", "1")
	mustRun(t, cfg, "patient", "delete", "1")

	_, err = os.Stat(metricsPath)
	assert.NoError(t, err, "metrics textfile is written after each command")
}

func TestPatientCommands(t *testing.T) {
	cfg, _ := writeTestConfig(t)

	mustRun(t, cfg, "patient", "add", "--name", "Vikram Rao", "--address", "MG Road")
	mustRun(t, cfg, "patient", "add", "--name", "Sunita Sharma", "--birth-date", "02/10/1975")

	out := mustRun(t, cfg, "patient", "list", "--search", "rao")
	assert.Contains(t, out, "Vikram Rao")
	assert.NotContains(t, out, "Sunita Sharma")

	mustRun(t, cfg, "patient", "update", "1", "--phone", "9000000001")
	out = mustRun(t, cfg, "patient", "show", "1")
	assert.Contains(t, out, "9000000001")
	assert.Contains(t, out, "MG Road")

	_, err := run(t, cfg, "patient", "update", "1", "--phone", "12")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))

	_, err = run(t, cfg, "patient", "show", "42")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Contains(t, describe(err), "warning: patient not found")

	_, err = run(t, cfg, "patient", "show", "abc")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
}

func TestStatsAndDoctorCommands(t *testing.T) {
	cfg, _ := writeTestConfig(t)

	mustRun(t, cfg, "patient", "add", "--name", "Stats Person")
	mustRun(t, cfg, "visit", "save", "--patient", "1", "--diagnosis", "Checkup")

	out := mustRun(t, cfg, "stats")
	assert.Contains(t, out, "Total patients")
	assert.Contains(t, out, "Visits today")

	mustRun(t, cfg, "doctor", "add", "--name", "Dr. Nair", "--username", "nair", "--password", "longpassword")
	assert.Contains(t, mustRun(t, cfg, "doctor", "verify", "--username", "nair", "--password", "longpassword"), "Dr. Nair")

	_, err := run(t, cfg, "doctor", "verify", "--username", "nair", "--password", "nope-nope")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))

	assert.Contains(t, mustRun(t, cfg, "doctor", "list"), "nair")
}

func TestLineItemParsing(t *testing.T) {
	labs, err := parseLabItems([]string{"3:Positive:repeat in a week", "4:Negative"})
	require.NoError(t, err)
	require.Len(t, labs, 2)
	assert.Equal(t, int64(3), labs[0].TestTypeID)
	assert.Equal(t, "repeat in a week", labs[0].Notes)
	assert.Empty(t, labs[1].Notes)

	rxs, err := parsePrescriptionItems([]string{"2:1 tab:10:twice daily: after meals"})
	require.NoError(t, err)
	require.Len(t, rxs, 1)
	assert.Equal(t, "1 tab", rxs[0].Dosage)
	assert.Equal(t, "10", rxs[0].Quantity)
	assert.Equal(t, "twice daily: after meals", rxs[0].Instructions)

	labs, err = parseLabItems([]string{`1:BP 120/80 at 10\:30`, `1:Taken 08\:00:fasting: 12h`})
	require.NoError(t, err)
	assert.Equal(t, "BP 120/80 at 10:30", labs[0].Result)
	assert.Empty(t, labs[0].Notes)
	assert.Equal(t, "Taken 08:00", labs[1].Result)
	assert.Equal(t, "fasting: 12h", labs[1].Notes)

	rxs, err = parsePrescriptionItems([]string{`2:1\:1 tab:5`})
	require.NoError(t, err)
	assert.Equal(t, "1:1 tab", rxs[0].Dosage)
	assert.Equal(t, "5", rxs[0].Quantity)
	assert.Empty(t, rxs[0].Instructions)

	_, err = parseLabItems([]string{"no-colon"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	_, err = parsePrescriptionItems([]string{"x:1 tab:10"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
}

func TestDescribe(t *testing.T) {
	cause := errors.New("disk I/O error")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", apperrors.ValidationFailed("diagnosis", "diagnosis must not be blank"), "invalid input: diagnosis must not be blank"},
		{"dependency", apperrors.DependencyExists("patient", 2), "cannot delete: patient is referenced by 2 dependent row(s)"},
		{"not found", fmt.Errorf("failed to get visit: %w", apperrors.NotFound("visit", nil)), "warning: visit not found"},
		{"store failure", apperrors.Classify(fmt.Errorf("failed to create patient: %w", cause)), "store failure: failed to create patient: disk I/O error"},
		{"untyped", cause, "error: disk I/O error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.err))
		})
	}
}
