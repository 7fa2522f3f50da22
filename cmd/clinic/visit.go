package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-records/internal/model"
	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
	"github.com/jwalitptl/clinic-records/pkg/validator"
)

func newVisitCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visit",
		Short: "Record and review patient visits",
	}

	cmd.AddCommand(newVisitSaveCommand(a))
	cmd.AddCommand(newVisitUpdateCommand(a))
	cmd.AddCommand(newVisitDeleteCommand(a))
	cmd.AddCommand(newVisitShowCommand(a))
	cmd.AddCommand(newVisitListCommand(a))

	return cmd
}

func bindVisitFields(cmd *cobra.Command, f *model.VisitFields) {
	cmd.Flags().StringVar(&f.VisitDate, "date", "", "visit date (dd/mm/yyyy)")
	cmd.Flags().StringVar(&f.Diagnosis, "diagnosis", "", "diagnosis")
	cmd.Flags().StringVar(&f.Symptoms, "symptoms", "", "symptoms")
	cmd.Flags().StringVar(&f.Treatment, "treatment", "", "treatment")
	cmd.Flags().StringVar(&f.Notes, "notes", "", "notes")
	cmd.Flags().StringVar(&f.DoctorName, "doctor", "", "attending doctor")
}

func newVisitSaveCommand(a *app) *cobra.Command {
	var (
		patientID int64
		fields    model.VisitFields
		labs      []string
		rxs       []string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a visit together with its lab results and prescriptions",
		Long: `Save a visit together with its lab results and prescriptions.

Lab results are given as --lab "<test-type-id>:<result>[:<notes>]" and
prescriptions as --rx "<medicine-id>:<dosage>:<quantity>[:<instructions>]".
Either flag may be repeated. Nothing is saved unless every item is valid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("date") {
				fields.VisitDate = time.Now().Format(validator.DateLayout)
			}
			pendingLabs, err := parseLabItems(labs)
			if err != nil {
				return err
			}
			pendingRxs, err := parsePrescriptionItems(rxs)
			if err != nil {
				return err
			}

			result, err := a.visits.SaveVisit(cmd.Context(), patientID, fields, pendingLabs, pendingRxs)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Visit %d saved with %d lab result(s) and %d prescription(s).\n",
				result.VisitID, result.LabResults, result.Prescriptions)
			return nil
		},
	}
	cmd.Flags().Int64Var(&patientID, "patient", 0, "patient id")
	bindVisitFields(cmd, &fields)
	cmd.Flags().StringArrayVar(&labs, "lab", nil, `lab result "<test-type-id>:<result>[:<notes>]"; write \: for a colon inside result`)
	cmd.Flags().StringArrayVar(&rxs, "rx", nil, `prescription "<medicine-id>:<dosage>:<quantity>[:<instructions>]"; write \: for a colon inside dosage`)
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func newVisitUpdateCommand(a *app) *cobra.Command {
	var changes model.VisitFields
	cmd := &cobra.Command{
		Use:   "update <visit-id>",
		Short: "Change the details of a visit; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("visit_id", args[0])
			if err != nil {
				return err
			}
			detail, err := a.visits.GetVisit(cmd.Context(), id)
			if err != nil {
				return err
			}

			fields := detail.Record.VisitFields
			flags := cmd.Flags()
			if flags.Changed("date") {
				fields.VisitDate = changes.VisitDate
			}
			if flags.Changed("diagnosis") {
				fields.Diagnosis = changes.Diagnosis
			}
			if flags.Changed("symptoms") {
				fields.Symptoms = changes.Symptoms
			}
			if flags.Changed("treatment") {
				fields.Treatment = changes.Treatment
			}
			if flags.Changed("notes") {
				fields.Notes = changes.Notes
			}
			if flags.Changed("doctor") {
				fields.DoctorName = changes.DoctorName
			}

			if err := a.visits.UpdateVisit(cmd.Context(), id, fields); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Visit %d updated.\n", id)
			return nil
		},
	}
	bindVisitFields(cmd, &changes)
	return cmd
}

func newVisitDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <visit-id>",
		Short: "Delete a visit that has no lab results or prescriptions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("visit_id", args[0])
			if err != nil {
				return err
			}
			if err := a.visits.DeleteVisit(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Visit %d deleted.\n", id)
			return nil
		},
	}
}

func newVisitShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <visit-id>",
		Short: "Show a visit with its lab results and prescriptions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("visit_id", args[0])
			if err != nil {
				return err
			}
			detail, err := a.visits.GetVisit(cmd.Context(), id)
			if err != nil {
				return err
			}

			r := detail.Record
			renderFields(a.out,
				"Visit", itoa(r.ID),
				"Patient", fmt.Sprintf("%s (%d)", detail.PatientName, r.PatientID),
				"Date", r.VisitDate,
				"Doctor", r.DoctorName,
				"Diagnosis", r.Diagnosis,
				"Symptoms", r.Symptoms,
				"Treatment", r.Treatment,
				"Notes", r.Notes,
			)

			labs := newTable(a.out, "Lab ID", "Test", "Result", "Date", "Notes")
			for _, l := range detail.LabResults {
				labs.Append([]string{itoa(l.ID), l.TestTypeName, l.Result, l.TestDate, l.Notes})
			}
			labs.Render()

			rxs := newTable(a.out, "Rx ID", "Medicine", "Dosage", "Quantity", "Instructions")
			for _, p := range detail.Prescriptions {
				rxs.Append([]string{itoa(p.ID), p.MedicineName, p.Dosage, fmt.Sprint(p.Quantity), p.Instructions})
			}
			rxs.Render()
			return nil
		},
	}
}

func newVisitListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <patient-id>",
		Short: "List the visits of a patient, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("patient_id", args[0])
			if err != nil {
				return err
			}
			records, err := a.visits.ListVisits(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderVisits(a, records)
			return nil
		},
	}
}

func renderVisits(a *app, records []*model.MedicalRecord) {
	table := newTable(a.out, "Visit ID", "Date", "Diagnosis", "Doctor")
	for _, r := range records {
		table.Append([]string{itoa(r.ID), r.VisitDate, r.Diagnosis, r.DoctorName})
	}
	table.Render()
}

// splitItem splits v on unescaped colons into at most n fields. "\:" is a
// literal colon in any field; the last field keeps any further colons.
func splitItem(v string, n int) []string {
	var (
		parts []string
		field strings.Builder
	)
	for i := 0; i < len(v); i++ {
		switch {
		case v[i] == '\\' && i+1 < len(v) && v[i+1] == ':':
			field.WriteByte(':')
			i++
		case v[i] == ':' && len(parts) < n-1:
			parts = append(parts, field.String())
			field.Reset()
		default:
			field.WriteByte(v[i])
		}
	}
	return append(parts, field.String())
}

// parseLabItems reads "<test-type-id>:<result>[:<notes>]" values.
func parseLabItems(values []string) ([]model.PendingLabResult, error) {
	items := make([]model.PendingLabResult, 0, len(values))
	for _, v := range values {
		parts := splitItem(v, 3)
		if len(parts) < 2 {
			return nil, apperrors.ValidationFailed("lab", fmt.Sprintf("%q must look like <test-type-id>:<result>[:<notes>]", v))
		}
		id, err := parseID("test_type_id", parts[0])
		if err != nil {
			return nil, err
		}
		item := model.PendingLabResult{TestTypeID: id, Result: parts[1]}
		if len(parts) == 3 {
			item.Notes = parts[2]
		}
		items = append(items, item)
	}
	return items, nil
}

// parsePrescriptionItems reads "<medicine-id>:<dosage>:<quantity>[:<instructions>]" values.
func parsePrescriptionItems(values []string) ([]model.PendingPrescription, error) {
	items := make([]model.PendingPrescription, 0, len(values))
	for _, v := range values {
		parts := splitItem(v, 4)
		if len(parts) < 3 {
			return nil, apperrors.ValidationFailed("rx", fmt.Sprintf("%q must look like <medicine-id>:<dosage>:<quantity>[:<instructions>]", v))
		}
		id, err := parseID("medicine_id", parts[0])
		if err != nil {
			return nil, err
		}
		item := model.PendingPrescription{MedicineID: id, Dosage: parts[1], Quantity: parts[2]}
		if len(parts) == 4 {
			item.Instructions = parts[3]
		}
		items = append(items, item)
	}
	return items, nil
}
