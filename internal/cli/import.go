package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/dtlattendance/internal/attendance"
)

// rosterFile is the YAML layout accepted by import:
//
//	children:
//	  - name: Ann
//	    nfcId: 04A2B9
//	  - name: Ben
type rosterFile struct {
	Children []attendance.ImportEntry `yaml:"children"`
}

// parseRoster decodes and validates a roster file. Every entry needs a name.
func parseRoster(data []byte) ([]attendance.ImportEntry, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	entries := make([]attendance.ImportEntry, 0, len(f.Children))
	for i, e := range f.Children {
		e.Name = strings.TrimSpace(e.Name)
		e.TagID = strings.TrimSpace(e.TagID)
		if err := attendance.ValidateName(e.Name); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// NewImportCommand bulk-adds children from a YAML roster file.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Add children from a YAML roster file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read roster: %w", err)
			}
			entries, err := parseRoster(data)
			if err != nil {
				return err
			}

			return withSession(cmd.Context(), opts, func(s *attendance.Store) error {
				added := s.ImportChildren(entries)
				return render(cmd.OutOrStdout(), opts, added, func(w io.Writer) error {
					fmt.Fprintf(w, "Imported %d children\n", len(added))
					return writeChildTable(w, added)
				})
			})
		},
	}
}
