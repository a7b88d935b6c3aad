package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reqtrack/internal/catalog"
	"reqtrack/internal/config"
	"reqtrack/internal/engine"
	"reqtrack/internal/format"
	"reqtrack/internal/logging"
	"reqtrack/internal/store"
	"reqtrack/internal/syncer"
)

type App struct {
	ConfigFile string
	Driver     string
	DSN        string
	UserID     string
	LogLevel   string
	Format     string
	PrettyJSON bool
	Color      bool

	// Catalog overrides the embedded catalog (tests).
	Catalog *catalog.Catalog
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "reqtrack",
		Short:        "Track progress on a fixed list of requirements",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Show the list (groups expanded in place)
  reqtrack list --format table

  # Mark progress
  reqtrack status 12 learning

  # Shortcut for: reqtrack show 12
  reqtrack 12

  # Select 3..7 and group them
  reqtrack select 3 && reqtrack select 7 --range
  reqtrack groups create "Guard basics"
`),
	}

	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", "", "Config file (default: $REQTRACK_CONFIG_DIR/config.yaml or ~/.reqtrack/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.Driver, "driver", "", "Store driver (sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&app.DSN, "dsn", "", "Store DSN (sqlite file path or postgres URL)")
	cmd.PersistentFlags().StringVar(&app.UserID, "user", "", "Session user id (default: local)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("REQTRACK_FORMAT", format.JSON), "Output format (json|table)")
	cmd.PersistentFlags().BoolVar(&app.Color, "color", false, "Color table output")
	cmd.PersistentFlags().Bool("no-session", false, "Run without a session user (nothing is read or written remotely)")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newNotesCmd(app))
	cmd.AddCommand(newSelectCmd(app))
	cmd.AddCommand(newActiveCmd(app))
	cmd.AddCommand(newGroupsCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newReorderCmd(app))
	cmd.AddCommand(newMediaCmd(app))
	cmd.AddCommand(newFoldersCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// session is one command's view of the world: an engine loaded from the store.
type session struct {
	eng   *engine.Engine
	store *store.Store
	log   *zap.Logger
}

func openSession(cmd *cobra.Command, app *App) (*session, error) {
	overrides := map[string]any{}
	if app.Driver != "" {
		overrides["store.driver"] = app.Driver
	}
	if app.DSN != "" {
		overrides["store.dsn"] = app.DSN
	}
	if app.UserID != "" {
		overrides["session.user_id"] = app.UserID
	}
	if noSession, _ := cmd.Flags().GetBool("no-session"); noSession {
		overrides["session.user_id"] = ""
	}
	if app.LogLevel != "" {
		overrides["log.level"] = app.LogLevel
	}
	cfg, err := config.Load(config.Options{File: app.ConfigFile, Overrides: overrides})
	if err != nil {
		return nil, err
	}

	log := logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr())
	driver, err := store.ParseDriver(cfg.Store.Driver)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, store.Options{Driver: driver, DSN: cfg.Store.DSN, Log: log})
	if err != nil {
		return nil, err
	}

	cat := app.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	layer := syncer.New(st, cfg.Session.UserID, log)
	eng := engine.New(cat, layer, log)
	if err := eng.Init(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return &session{eng: eng, store: st, log: log}, nil
}

// Close waits for queued remote writes, then closes the store.
func (s *session) Close() {
	layer := s.eng.SyncLayer()
	layer.Wait()
	if n := layer.Failures(); n > 0 {
		s.log.Warn("some remote writes failed; local changes were not saved", zap.Int64("failed", n), zap.Int64("writes", layer.Writes()))
	}
	if err := s.store.Close(); err != nil {
		s.log.Error("close store", zap.Error(err))
	}
	_ = s.log.Sync()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func parseReqID(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid requirement id: %q", s)
	}
	return n, nil
}

func writeOut(cmd *cobra.Command, app *App, data any) error {
	if app.Format == format.Table {
		if t, ok := data.(format.Tabler); ok {
			return format.WriteTable(cmd.OutOrStdout(), t.Table(), app.Color)
		}
	}
	return format.Write(cmd.OutOrStdout(), map[string]any{"data": data}, app.Format, app.PrettyJSON, app.Color)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
