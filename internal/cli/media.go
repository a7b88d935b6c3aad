package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"reqtrack/internal/engine"
	"reqtrack/internal/model"
)

func newMediaCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Attach videos and links to a requirement",
	}
	cmd.AddCommand(newMediaListCmd(app))
	cmd.AddCommand(newMediaAddCmd(app))
	cmd.AddCommand(newMediaRmCmd(app))
	cmd.AddCommand(newMediaUpdateCmd(app))
	cmd.AddCommand(newMediaReorderCmd(app))
	return cmd
}

// folderArg maps the --folder flag to a folder id; "" and "root" mean the root.
func folderArg(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "root") {
		return nil
	}
	return &s
}

func newMediaListCmd(app *App) *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "list <req-id>",
		Short: "List media of one folder (default: root) in display order",
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

			fid := folderArg(folder)
			return writeOut(cmd, app, mediaView{ReqID: id, FolderID: fid, Items: s.eng.MediaList(id, fid)})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Folder id (default: root)")
	return cmd
}

func newMediaAddCmd(app *App) *cobra.Command {
	var typ, title, url, notes, folder string
	cmd := &cobra.Command{
		Use:   "add <req-id>",
		Short: "Attach a video or link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReqID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			mt, err := model.ParseMediaType(typ)
			if err != nil {
				return writeErr(cmd, err)
			}
			in := engine.MediaInput{Type: mt, Title: title, URL: url, FolderID: folderArg(folder)}
			if cmd.Flags().Changed("notes") {
				in.Notes = &notes
			}
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			mid, err := s.eng.AddMedia(id, in)
			if err != nil {
				return writeErr(cmd, err)
			}
			m, _ := findMedia(s, id, mid)
			return writeOut(cmd, app, m)
		},
	}
	cmd.Flags().StringVar(&typ, "type", string(model.MediaVideo), "Media type (video|link)")
	cmd.Flags().StringVar(&title, "title", "", "Title (required)")
	cmd.Flags().StringVar(&url, "url", "", "URL (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringVar(&folder, "folder", "", "Folder id (default: root)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newMediaRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <req-id> <media-id>",
		Short: "Remove a media item (no error if it is already gone)",
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

			if err := s.eng.RemoveMedia(id, args[1]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"removed": args[1]})
		},
	}
}

func newMediaUpdateCmd(app *App) *cobra.Command {
	var typ, title, url, notes, folder string
	cmd := &cobra.Command{
		Use:   "update <req-id> <media-id>",
		Short: "Edit a media item; --folder moves it to the end of another folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReqID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var p engine.MediaPatch
			if cmd.Flags().Changed("type") {
				mt, err := model.ParseMediaType(typ)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.Type = &mt
			}
			if cmd.Flags().Changed("title") {
				p.Title = &title
			}
			if cmd.Flags().Changed("url") {
				p.URL = &url
			}
			if cmd.Flags().Changed("notes") {
				p.Notes = &notes
			}
			if cmd.Flags().Changed("folder") {
				p.MoveFolder = true
				p.FolderID = folderArg(folder)
			}
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := s.eng.UpdateMedia(id, args[1], p); err != nil {
				return writeErr(cmd, err)
			}
			m, _ := findMedia(s, id, args[1])
			return writeOut(cmd, app, m)
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "Media type (video|link)")
	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&url, "url", "", "URL")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringVar(&folder, "folder", "", "Move to folder id (root for the root)")
	return cmd
}

func newMediaReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <req-id> <dragged-id> <target-id>",
		Short: "Move a media item to another item's position in the same folder",
		Args:  cobra.ExactArgs(3),
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

			if err := s.eng.ReorderMedia(id, args[1], args[2]); err != nil {
				return writeErr(cmd, err)
			}
			m, _ := findMedia(s, id, args[1])
			return writeOut(cmd, app, mediaView{ReqID: id, FolderID: m.FolderID, Items: s.eng.MediaList(id, m.FolderID)})
		},
	}
}

func findMedia(s *session, reqID int, mediaID string) (model.MediaItem, bool) {
	for _, m := range s.eng.State(reqID).Media {
		if m.ID == mediaID {
			return m, true
		}
	}
	return model.MediaItem{}, false
}

func newFoldersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Organize a requirement's media into folders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <req-id> <name>",
		Short: "Create a folder",
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

			fid, err := s.eng.CreateFolder(id, args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, model.MediaFolder{ID: fid, Name: strings.TrimSpace(args[1])})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <req-id> <folder-id> <name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(3),
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

			if err := s.eng.RenameFolder(id, args[1], args[2]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, model.MediaFolder{ID: args[1], Name: strings.TrimSpace(args[2])})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <req-id> <folder-id>",
		Short: "Delete a folder; its media moves to the root",
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

			if err := s.eng.RemoveFolder(id, args[1]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"removed": args[1]})
		},
	})
	return cmd
}
