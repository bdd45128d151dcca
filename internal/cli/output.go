package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mmynk/dtlattendance/internal/models"
)

// render writes v as indented JSON when --format=json, otherwise calls text.
func render(w io.Writer, opts *RootOptions, v any, text func(io.Writer) error) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}

func writeChildTable(w io.Writer, children []models.Child) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tNFC")
	for _, c := range children {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.TagID)
	}
	return tw.Flush()
}
