package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-records/internal/model"
	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
)

func newCatalogCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Maintain the lab test and medicine catalogs",
		Long: `Maintain the lab test and medicine catalogs.

<kind> is either test_type or medicine.`,
	}

	cmd.AddCommand(newCatalogAddCommand(a))
	cmd.AddCommand(newCatalogUpdateCommand(a))
	cmd.AddCommand(newCatalogDeleteCommand(a))
	cmd.AddCommand(newCatalogListCommand(a))

	return cmd
}

func parseKind(raw string) (model.CatalogKind, error) {
	kind, err := model.ParseCatalogKind(raw)
	if err != nil {
		return "", apperrors.ValidationFailed("kind", err.Error())
	}
	return kind, nil
}

func newCatalogAddCommand(a *app) *cobra.Command {
	var entry model.CatalogEntry
	cmd := &cobra.Command{
		Use:   "add <kind>",
		Short: "Add a test type or medicine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			entry.Kind = kind
			if err := a.catalogs.AddEntry(cmd.Context(), &entry); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %d added.\n", kind, entry.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&entry.Name, "name", "", "name")
	cmd.Flags().StringVar(&entry.Description, "description", "", "description")
	return cmd
}

func newCatalogUpdateCommand(a *app) *cobra.Command {
	var changes model.CatalogEntry
	cmd := &cobra.Command{
		Use:   "update <kind> <id>",
		Short: "Rename or describe a test type or medicine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			id, err := parseID("id", args[1])
			if err != nil {
				return err
			}
			entry, err := a.catalogs.GetEntry(cmd.Context(), kind, id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				entry.Name = changes.Name
			}
			if cmd.Flags().Changed("description") {
				entry.Description = changes.Description
			}
			if err := a.catalogs.UpdateEntry(cmd.Context(), entry); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %d updated.\n", kind, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&changes.Name, "name", "", "name")
	cmd.Flags().StringVar(&changes.Description, "description", "", "description")
	return cmd
}

func newCatalogDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a test type or medicine that nothing references",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			id, err := parseID("id", args[1])
			if err != nil {
				return err
			}
			if err := a.catalogs.DeleteEntry(cmd.Context(), kind, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %d deleted.\n", kind, id)
			return nil
		},
	}
}

func newCatalogListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind>",
		Short: "List test types or medicines by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			entries, err := a.catalogs.ListEntries(cmd.Context(), kind)
			if err != nil {
				return err
			}
			table := newTable(a.out, "ID", "Name", "Description")
			for _, e := range entries {
				table.Append([]string{itoa(e.ID), e.Name, e.Description})
			}
			table.Render()
			return nil
		},
	}
}
