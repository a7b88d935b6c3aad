package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"reqtrack/internal/model"
)

func newGroupsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Group requirements into named, collapsible sections",
	}
	cmd.AddCommand(newGroupsListCmd(app))
	cmd.AddCommand(newGroupsCreateCmd(app))
	cmd.AddCommand(newGroupsUngroupCmd(app))
	cmd.AddCommand(newGroupsRenameCmd(app))
	cmd.AddCommand(newGroupsToggleCmd(app))
	cmd.AddCommand(newGroupsReorderCmd(app))
	return cmd
}

func newGroupsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups in list order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			return writeOut(cmd, app, groupsView(s.eng.Groups()))
		},
	}
}

func newGroupsCreateCmd(app *App) *cobra.Command {
	var ids []int
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Group the current selection (or --ids) under a new name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			var gid string
			if cmd.Flags().Changed("ids") {
				gid, err = s.eng.CreateGroupFrom(args[0], ids)
			} else {
				gid, err = s.eng.CreateGroup(args[0])
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			g, _ := s.eng.Group(gid)
			return writeOut(cmd, app, g)
		},
	}
	cmd.Flags().IntSliceVar(&ids, "ids", nil, "Requirement ids to group instead of the selection (comma-separated)")
	return cmd
}

func newGroupsUngroupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ungroup <group-id>",
		Short: "Dissolve a group, putting its members back where the group was",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := s.eng.Ungroup(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"ungrouped": args[0], "listOrder": s.eng.ListOrder()})
		},
	}
}

func newGroupsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <group-id> <name>",
		Short: "Rename a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := s.eng.RenameGroup(args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			g, _ := s.eng.Group(args[0])
			return writeOut(cmd, app, g)
		},
	}
}

func newGroupsToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <group-id>",
		Short: "Collapse or expand a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := s.eng.ToggleGroupCollapse(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			g, _ := s.eng.Group(args[0])
			return writeOut(cmd, app, g)
		},
	}
}

func newGroupsReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <group-id> <from> <to>",
		Short: "Move a member inside a group by index",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseIndexes(args[1], args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := s.eng.ReorderInGroup(args[0], from, to); err != nil {
				return writeErr(cmd, err)
			}
			g, _ := s.eng.Group(args[0])
			return writeOut(cmd, app, g)
		},
	}
}

func newMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <active> <over>",
		Short: "Drag an entry onto another (integers are requirements, anything else a group id)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := model.ParseListEntry(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			over, err := model.ParseListEntry(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := s.eng.MoveItem(active, over); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, buildListView(s.eng))
		},
	}
}

func newReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <from> <to>",
		Short: "Move a top-level entry by index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseIndexes(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := s.eng.ReorderList(from, to); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, buildListView(s.eng))
		},
	}
}

func parseIndexes(a, b string) (int, int, error) {
	from, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, errInvalidArg("from", a)
	}
	to, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, errInvalidArg("to", b)
	}
	return from, to, nil
}
