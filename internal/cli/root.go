package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"lifeman/internal/config"
	appLog "lifeman/internal/log"
	"lifeman/internal/model"
	"lifeman/internal/organizer"
	"lifeman/internal/render"
	"lifeman/internal/store"
)

const version = "0.1.0"

// app holds the per-invocation state shared by the command tree. Nothing
// here outlives one Execute call.
type app struct {
	icsPath    string
	configPath string
	logLevel   string

	cfg *config.Config
	loc *time.Location
}

// NewRootCommand builds the full command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "lifeman",
		Short:         "Life manager: events, reminders and chores in one .ics file",
		Long:          `lifeman keeps classes/events, reminders and chores in a single iCalendar file. Every change rewrites the whole file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.icsPath, "ics", "", "path of the calendar file (created if missing)")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path of a YAML config file (defaults when empty)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info or error (overrides config)")

	root.AddCommand(
		a.eventsCommand(),
		a.todosCommand(organizer.GroupReminders, "Reminders"),
		a.todosCommand(organizer.GroupChores, "Chores"),
		versionCommand(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		appLog.Debug("command failed", "err", err)
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	levelName := cfg.LogLevel
	if a.logLevel != "" {
		levelName = a.logLevel
	}
	level, err := appLog.ParseLevel(levelName)
	if err != nil {
		return err
	}
	appLog.SetLevel(level)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	a.loc = loc

	appLog.Debug("effective config",
		"ics", a.icsPath,
		"config", a.configPath,
		"timezone", cfg.Timezone,
		"seed_profile", cfg.Seed.Profile,
	)
	return nil
}

// open loads the calendar named by --ics and returns an organizer bound to
// it. Called by every leaf command that touches the calendar.
func (a *app) open() (*organizer.Organizer, error) {
	if a.icsPath == "" {
		return nil, errors.New(`required flag "ics" not set`)
	}

	policy, err := a.cfg.SeedPolicy()
	if err != nil {
		return nil, err
	}

	s, cal, err := store.Open(a.icsPath, store.Options{
		Seeder:   policy,
		Location: a.loc,
	})
	if err != nil {
		return nil, err
	}

	o := organizer.New(cal, s, organizer.Options{
		View: render.Options{Location: a.loc, Layout: a.cfg.TimeLayout},
	})

	// Seeded items are written at once so the UIDs a first show prints can
	// be used by the next command.
	if s.Seeded {
		if err := o.Persist(); err != nil {
			return nil, err
		}
		appLog.Info("persisted seeded calendar", "path", a.icsPath)
	}
	return o, nil
}

// reportNotFound turns a missing-uid error into a user message and a nil
// error; anything else is passed through.
func reportNotFound(cmd *cobra.Command, err error) error {
	var nf model.NotFoundError
	if errors.As(err, &nf) {
		fmt.Fprintf(cmd.OutOrStdout(), "could not find %s %q\n", nf.Kind, nf.UID)
		return nil
	}
	return err
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "lifeman", version)
		},
	}
}
