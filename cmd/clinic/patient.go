package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-records/internal/model"
)

func newPatientCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Register, edit and search patients",
	}

	cmd.AddCommand(newPatientAddCommand(a))
	cmd.AddCommand(newPatientUpdateCommand(a))
	cmd.AddCommand(newPatientDeleteCommand(a))
	cmd.AddCommand(newPatientListCommand(a))
	cmd.AddCommand(newPatientShowCommand(a))

	return cmd
}

func bindPatientFlags(cmd *cobra.Command, p *model.Patient) {
	cmd.Flags().StringVar(&p.Name, "name", "", "full name")
	cmd.Flags().StringVar(&p.BirthDate, "birth-date", "", "date of birth (dd/mm/yyyy)")
	cmd.Flags().StringVar(&p.Gender, "gender", "", "gender")
	cmd.Flags().StringVar(&p.Phone, "phone", "", "10 digit phone number")
	cmd.Flags().StringVar(&p.Address, "address", "", "address")
}

func newPatientAddCommand(a *app) *cobra.Command {
	var p model.Patient
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.patients.CreatePatient(cmd.Context(), &p); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Patient %d registered.\n", p.ID)
			return nil
		},
	}
	bindPatientFlags(cmd, &p)
	return cmd
}

func newPatientUpdateCommand(a *app) *cobra.Command {
	var changes model.Patient
	cmd := &cobra.Command{
		Use:   "update <patient-id>",
		Short: "Change the details of a patient; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("patient_id", args[0])
			if err != nil {
				return err
			}
			p, err := a.patients.GetPatient(cmd.Context(), id)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = changes.Name
			}
			if flags.Changed("birth-date") {
				p.BirthDate = changes.BirthDate
			}
			if flags.Changed("gender") {
				p.Gender = changes.Gender
			}
			if flags.Changed("phone") {
				p.Phone = changes.Phone
			}
			if flags.Changed("address") {
				p.Address = changes.Address
			}

			if err := a.patients.UpdatePatient(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Patient %d updated.\n", p.ID)
			return nil
		},
	}
	bindPatientFlags(cmd, &changes)
	return cmd
}

func newPatientDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <patient-id>",
		Short: "Delete a patient who has no visits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("patient_id", args[0])
			if err != nil {
				return err
			}
			if err := a.patients.DeletePatient(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Patient %d deleted.\n", id)
			return nil
		},
	}
}

func newPatientListCommand(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patients, newest first, or search by name, phone or address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patients, err := a.patients.SearchPatients(cmd.Context(), search)
			if err != nil {
				return err
			}
			table := newTable(a.out, "ID", "Name", "Birth date", "Gender", "Phone", "Address", "Registered")
			for _, p := range patients {
				table.Append([]string{itoa(p.ID), p.Name, p.BirthDate, p.Gender, p.Phone, p.Address, p.CreatedDate})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive search term")
	return cmd
}

func newPatientShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <patient-id>",
		Short: "Show a patient and their visits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("patient_id", args[0])
			if err != nil {
				return err
			}
			p, err := a.patients.GetPatient(cmd.Context(), id)
			if err != nil {
				return err
			}
			records, err := a.visits.ListVisits(cmd.Context(), id)
			if err != nil {
				return err
			}

			renderFields(a.out,
				"ID", itoa(p.ID),
				"Name", p.Name,
				"Birth date", p.BirthDate,
				"Gender", p.Gender,
				"Phone", p.Phone,
				"Address", p.Address,
				"Registered", p.CreatedDate,
			)
			renderVisits(a, records)
			return nil
		},
	}
}
