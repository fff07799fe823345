package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tick/internal/commands"
	"github.com/colonyops/tick/internal/core/config"
	"github.com/colonyops/tick/internal/core/logging"
	"github.com/colonyops/tick/internal/core/styles"
	"github.com/colonyops/tick/internal/tick"
	"github.com/colonyops/tick/internal/tick/sweep"
	"github.com/colonyops/tick/pkg/logutils"
)

const sweepInterval = 5 * time.Minute

// runtime holds what Before opens and After releases.
type runtime struct {
	flags *commands.Flags
	app   *tick.App

	closeLog   func()
	stopSweep  context.CancelFunc
	storageSet bool
}

func main() {
	rt := &runtime{
		flags: &commands.Flags{},
		// Commands capture this pointer at registration; Before fills it in.
		app: &tick.App{},
	}

	root := &cli.Command{
		Name:      "tick",
		Usage:     "A small categorized task list",
		UsageText: "tick [global options] [command [command options]]",
		Description: `tick keeps a task list grouped into personal, work, and shopping categories.

Run 'tick' with no arguments to open the interactive list.
Run 'tick add' to add a task from the shell.`,
		Version: versionString(),
		Flags:   globalFlags(rt.flags),
		Before:  rt.before,
		After:   rt.after,
	}

	tui := commands.NewTuiCmd(rt.flags, rt.app)

	root = commands.NewAddCmd(rt.flags, rt.app).Register(root)
	root = commands.NewLsCmd(rt.flags, rt.app).Register(root)
	root = commands.NewDoneCmd(rt.flags, rt.app).Register(root)
	root = commands.NewEditCmd(rt.flags, rt.app).Register(root)
	root = commands.NewRmCmd(rt.flags, rt.app).Register(root)
	root = commands.NewUndoCmd(rt.flags, rt.app).Register(root)
	root = commands.NewNotificationsCmd(rt.flags, rt.app).Register(root)
	root = commands.NewExportCmd(rt.flags, rt.app).Register(root)
	root = commands.NewImportCmd(rt.flags, rt.app).Register(root)
	root = commands.NewConfigValidateCmd(rt.flags).Register(root)
	root = tui.Register(root)

	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Present() {
			return fmt.Errorf("unknown command %q, run 'tick --help' for usage", c.Args().First())
		}
		return tui.Run(ctx, c)
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "tick:", err)
		os.Exit(1)
	}
}

func globalFlags(f *commands.Flags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, disabled)",
			Sources:     cli.EnvVars("TICK_LOG_LEVEL"),
			Value:       "info",
			Destination: &f.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file (defaults to <data-dir>/tick.log)",
			Sources:     cli.EnvVars("TICK_LOG_FILE"),
			Destination: &f.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to a YAML or TOML config file",
			Sources:     cli.EnvVars("TICK_CONFIG"),
			Value:       commands.DefaultConfigPath(),
			Destination: &f.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "directory for the database, JSON files and logs",
			Sources:     cli.EnvVars("TICK_DATA_DIR"),
			Value:       commands.DefaultDataDir(),
			Destination: &f.DataDir,
		},
	}
}

func (rt *runtime) before(ctx context.Context, c *cli.Command) (context.Context, error) {
	logFile := rt.flags.LogFile
	if logFile == "" {
		logFile = filepath.Join(rt.flags.DataDir, "tick.log")
	}

	logger, closeLog, err := logutils.New(rt.flags.LogLevel, logFile)
	if err != nil {
		return ctx, fmt.Errorf("setup logger: %w", err)
	}
	log.Logger = logger.Hook(logging.ContextHook{})
	rt.closeLog = closeLog

	cfg, err := config.Read(rt.flags.ConfigPath, rt.flags.DataDir)
	if err != nil {
		return ctx, err
	}
	rt.flags.Config = cfg

	// config validate reports problems itself and needs no storage.
	if c.Args().First() == "config" {
		return ctx, nil
	}
	if err := cfg.Validate(); err != nil {
		return ctx, fmt.Errorf("invalid config (run 'tick config validate'): %w", err)
	}

	storage := tick.OpenStorage(cfg, logging.Component("storage"))
	*rt.app = *tick.NewApp(cfg, storage, logging.Component("tick"))
	rt.storageSet = true

	// A saved theme choice wins over the config file.
	appearance := rt.app.Prefs.Theme(ctx, styles.Appearance(cfg.TUI.Theme))
	styles.SetTheme(styles.DetectMode(appearance))

	rt.app.Tasks.Load(ctx)

	if sw, ok := storage.Sweeper(); ok {
		sweepCtx, cancel := context.WithCancel(context.Background())
		rt.stopSweep = cancel
		go sweep.Start(sweepCtx, sw, sweepInterval)
	}

	return ctx, nil
}

func (rt *runtime) after(context.Context, *cli.Command) error {
	if rt.stopSweep != nil {
		rt.stopSweep()
	}

	var err error
	if rt.storageSet {
		if err = rt.app.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close storage")
		}
	}

	if rt.closeLog != nil {
		rt.closeLog()
	}
	return err
}
