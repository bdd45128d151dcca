package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/dtlattendance/internal/attendance"
	"github.com/mmynk/dtlattendance/internal/datekey"
	"github.com/mmynk/dtlattendance/internal/models"
)

// NewChildrenCommand lists the roster.
func NewChildrenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "children",
		Short: "List the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), opts, func(s *attendance.Store) error {
				children := s.Children()
				return render(cmd.OutOrStdout(), opts, children, func(w io.Writer) error {
					if len(children) == 0 {
						_, err := fmt.Fprintln(w, "No children yet.")
						return err
					}
					return writeChildTable(w, children)
				})
			})
		},
	}
}

// NewAddCommand adds a child to the roster.
func NewAddCommand(opts *RootOptions) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a child to the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if err := attendance.ValidateName(name); err != nil {
				return err
			}

			return withSession(cmd.Context(), opts, func(s *attendance.Store) error {
				child := s.AddChild(name, strings.TrimSpace(tag))
				return render(cmd.OutOrStdout(), opts, child, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Added %s (id %s, NFC %s)\n", child.Name, child.ID, child.TagID)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "NFC tag ID (generated when omitted)")
	return cmd
}

// NewRemoveCommand removes a child and its attendance history.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove CHILD_ID",
		Short: "Remove a child and all of their attendance records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), opts, func(s *attendance.Store) error {
				removed := s.RemoveChild(args[0])
				out := map[string]any{"childId": args[0], "removed": removed}
				return render(cmd.OutOrStdout(), opts, out, func(w io.Writer) error {
					msg := "Removed " + args[0]
					if !removed {
						msg = "No child with id " + args[0]
					}
					_, err := fmt.Fprintln(w, msg)
					return err
				})
			})
		},
	}
}

// NewToggleCommand flips a child's presence for today.
func NewToggleCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle CHILD_ID",
		Short: "Toggle a child's presence for today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), opts, func(s *attendance.Store) error {
				present := s.TogglePresentToday(args[0])
				out := map[string]any{"childId": args[0], "date": s.Today(), "present": present}
				return render(cmd.OutOrStdout(), opts, out, func(w io.Writer) error {
					state := "absent"
					if present {
						state = "present"
					}
					_, err := fmt.Fprintf(w, "%s is now %s on %s\n", args[0], state, s.Today())
					return err
				})
			})
		},
	}
}

// errEmptyTag is returned by scan when no tag is given.
var errEmptyTag = errors.New("enter an NFC tag ID to scan")

// NewScanCommand marks the child holding a tag present today.
func NewScanCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan TAG",
		Short: "Mark the child with an NFC tag present today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := strings.TrimSpace(args[0])
			if tag == "" {
				return errEmptyTag
			}

			return withSession(cmd.Context(), opts, func(s *attendance.Store) error {
				result := s.MarkPresentByTag(tag)
				return render(cmd.OutOrStdout(), opts, result, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, scanMessage(result))
					return err
				})
			})
		},
	}
}

func scanMessage(r models.MarkResult) string {
	switch {
	case r.Child == nil:
		return "No child found with that NFC ID."
	case r.AlreadyMarked:
		return r.Child.Name + " marked present (already marked)."
	default:
		return r.Child.Name + " marked present."
	}
}

// NewPresentCommand lists who was present on a date (default today).
func NewPresentCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "present [DATE]",
		Short: "List the children present on a date (YYYY-MM-DD, default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := datekey.Validate(args[0]); err != nil {
					return err
				}
			}

			return withSession(cmd.Context(), opts, func(s *attendance.Store) error {
				date := s.Today()
				if len(args) == 1 {
					date = args[0]
				}
				ids := s.PresentIDsForDate(date)
				out := map[string]any{"date": date, "childIds": ids}
				return render(cmd.OutOrStdout(), opts, out, func(w io.Writer) error {
					fmt.Fprintf(w, "%s: %d present\n", date, len(ids))
					for _, id := range ids {
						name := "(removed)"
						if c, ok := s.Child(id); ok {
							name = c.Name
						}
						fmt.Fprintf(w, "  %s  %s\n", id, name)
					}
					return nil
				})
			})
		},
	}
}

// NewDashboardCommand prints today's summary.
func NewDashboardCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize today's attendance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), opts, func(s *attendance.Store) error {
				d := s.Dashboard(s.Today())
				return render(cmd.OutOrStdout(), opts, d, func(w io.Writer) error {
					fmt.Fprintf(w, "Today: %s\n", d.Date)
					fmt.Fprintf(w, "Children: %d\n", d.ChildCount)
					fmt.Fprintf(w, "Present today: %d\n", d.PresentCount)
					if d.PresentCount == 0 {
						fmt.Fprintln(w, "No attendance yet today.")
						return nil
					}
					fmt.Fprintln(w, "Recently marked present:")
					for _, c := range d.Recent {
						fmt.Fprintf(w, "  %s (NFC %s)\n", c.Name, c.TagID)
					}
					return nil
				})
			})
		},
	}
}
