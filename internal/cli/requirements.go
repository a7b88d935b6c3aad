package cli

import (
	"github.com/spf13/cobra"

	"reqtrack/internal/model"
)

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the list in order, with groups expanded in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			return writeOut(cmd, app, buildListView(s.eng))
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <req-id>",
		Short: "Show one requirement and its progress",
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

			v, err := detailOf(s, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, v)
		},
	}
}

func detailOf(s *session, id int) (detailView, error) {
	for _, r := range s.eng.Requirements() {
		if r.ID == id {
			return detailView{Requirement: r, State: s.eng.State(id)}, nil
		}
	}
	return detailView{}, errNotFound("requirement", id)
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <req-id> <todo|learning|done>",
		Short: "Set the progress status of a requirement",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReqID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			status, err := model.ParseStatus(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := s.eng.SetStatus(id, status); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, s.eng.State(id))
		},
	}
}

func newNotesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <req-id> <text>",
		Short: "Replace the free-text notes of a requirement",
		Args:  cobra.ExactArgs(2),
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

			if err := s.eng.SetNotes(id, args[1]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, s.eng.State(id))
		},
	}
}
