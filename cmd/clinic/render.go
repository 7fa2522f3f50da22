package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// renderFields prints label/value pairs as a two column table.
func renderFields(w io.Writer, pairs ...string) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i := 0; i+1 < len(pairs); i += 2 {
		table.Append([]string{pairs[i], pairs[i+1]})
	}
	table.Render()
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ValidationFailed(name, name+" must be a positive integer")
	}
	return id, nil
}
