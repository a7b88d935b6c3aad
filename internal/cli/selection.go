package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newSelectCmd(app *App) *cobra.Command {
	var multi bool
	var rangeSel bool

	cmd := &cobra.Command{
		Use:   "select <req-id>",
		Short: "Click a requirement: replace the selection, toggle it (--multi) or extend a range (--range)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReqID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := s.eng.SelectItem(id, multi, rangeSel); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, s.eng.Selection())
		},
	}
	cmd.Flags().BoolVar(&multi, "multi", false, "Toggle the requirement in or out of the selection")
	cmd.Flags().BoolVar(&rangeSel, "range", false, "Add everything between the anchor and this requirement")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			s.eng.ClearSelection()
			return writeOut(cmd, app, s.eng.Selection())
		},
	})
	return cmd
}

func newActiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "active [req-id|none]",
		Short: "Show, set or clear the requirement whose detail is open",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *int
			set := len(args) == 1
			if set && !strings.EqualFold(strings.TrimSpace(args[0]), "none") {
				id, err := parseReqID(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				target = &id
			}
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if set {
				if err := s.eng.SetActiveRequirement(target); err != nil {
					return writeErr(cmd, err)
				}
			}
			var out *int
			if id, ok := s.eng.ActiveRequirement(); ok {
				out = &id
			}
			return writeOut(cmd, app, map[string]any{"activeRequirementId": out})
		},
	}
}
