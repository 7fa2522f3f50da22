package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-records/internal/model"
)

func newDoctorCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Manage doctor credentials",
	}

	var req model.RegisterDoctorRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a doctor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doctor, err := a.doctors.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Doctor %d (%s) registered.\n", doctor.ID, doctor.Username)
			return nil
		},
	}
	add.Flags().StringVar(&req.FullName, "name", "", "full name")
	add.Flags().StringVar(&req.Username, "username", "", "login name")
	add.Flags().StringVar(&req.Password, "password", "", "password (at least 8 characters)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered doctors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doctors, err := a.doctors.ListDoctors(cmd.Context())
			if err != nil {
				return err
			}
			table := newTable(a.out, "ID", "Name", "Username", "Registered")
			for _, d := range doctors {
				table.Append([]string{itoa(d.ID), d.FullName, d.Username, d.CreatedDate})
			}
			table.Render()
			return nil
		},
	}

	var username, password string
	verify := &cobra.Command{
		Use:   "verify",
		Short: "Check a doctor's username and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doctor, err := a.doctors.VerifyCredentials(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Credentials valid for %s.\n", doctor.FullName)
			return nil
		},
	}
	verify.Flags().StringVar(&username, "username", "", "login name")
	verify.Flags().StringVar(&password, "password", "", "password")

	cmd.AddCommand(add, list, verify)
	return cmd
}
