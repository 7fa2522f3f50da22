package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-records/internal/model"
)

func newLabCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lab",
		Short: "Add or remove lab results on a saved visit",
	}

	var pending model.PendingLabResult
	add := &cobra.Command{
		Use:   "add <visit-id>",
		Short: "Attach a lab result to a visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			visitID, err := parseID("visit_id", args[0])
			if err != nil {
				return err
			}
			result, err := a.visits.AddLabResult(cmd.Context(), visitID, pending)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Lab result %d added to visit %d.\n", result.ID, visitID)
			return nil
		},
	}
	add.Flags().Int64Var(&pending.TestTypeID, "type", 0, "test type id")
	add.Flags().StringVar(&pending.Result, "result", "", "result")
	add.Flags().StringVar(&pending.Notes, "notes", "", "notes")

	remove := &cobra.Command{
		Use:   "delete <lab-result-id>",
		Short: "Remove a lab result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("lab_result_id", args[0])
			if err != nil {
				return err
			}
			if err := a.visits.DeleteLabResult(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Lab result %d removed.\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func newPrescriptionCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rx",
		Aliases: []string{"prescription"},
		Short:   "Add or remove prescriptions on a saved visit",
	}

	var pending model.PendingPrescription
	add := &cobra.Command{
		Use:   "add <visit-id>",
		Short: "Attach a prescription to a visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			visitID, err := parseID("visit_id", args[0])
			if err != nil {
				return err
			}
			prescription, err := a.visits.AddPrescription(cmd.Context(), visitID, pending)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Prescription %d added to visit %d.\n", prescription.ID, visitID)
			return nil
		},
	}
	add.Flags().Int64Var(&pending.MedicineID, "medicine", 0, "medicine id")
	add.Flags().StringVar(&pending.Dosage, "dosage", "", "dosage")
	add.Flags().StringVar(&pending.Quantity, "quantity", "", "quantity (positive integer)")
	add.Flags().StringVar(&pending.Instructions, "instructions", "", "instructions")

	remove := &cobra.Command{
		Use:   "delete <prescription-id>",
		Short: "Remove a prescription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("prescription_id", args[0])
			if err != nil {
				return err
			}
			if err := a.visits.DeletePrescription(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Prescription %d removed.\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}
