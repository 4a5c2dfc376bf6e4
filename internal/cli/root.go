// Package cli holds the cobra commands of the autosearch binary
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"autosearch/internal/autocomplete"
	"autosearch/internal/config"
	"autosearch/internal/domain"
	"autosearch/internal/eventbus"
	"autosearch/internal/ui"
	"autosearch/internal/ui/views"
)

// e2eEnv makes the TUI print a readiness marker for the PTY tests
const e2eEnv = "AUTOSEARCH_E2E_TEST"

// options are the persistent flags shared by every command
type options struct {
	configPath string
	data       string
	repos      string
	url        string
	latency    time.Duration
	jitter     time.Duration
	failRate   float64
	debug      bool
	logFile    string

	cfg     *config.Config
	logSink io.Closer
}

// Execute runs the command tree with args. Cobra skips post-run hooks when
// a command fails, so the log file is closed here.
func Execute(ctx context.Context, args []string) error {
	opts := &options{}
	defer opts.teardown()

	rootCmd := newRootCmd(opts)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// NewRootCmd creates the autosearch command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "autosearch",
		Short: "Search as you type with live suggestions",
		Long: "autosearch opens a search box that suggests matches while you type.\n" +
			"Suggestions come from a dataset file, the git repositories under a\n" +
			"directory or a remote suggestion server.",
		Args: cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runTUI(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ./"+config.FileName+" or the user config dir)")
	flags.StringVar(&opts.data, "data", "", "YAML or JSON dataset file to search")
	flags.StringVar(&opts.repos, "repos", "", "directory whose git repositories are searched")
	flags.StringVar(&opts.url, "url", "", "base URL of a suggestion server")
	flags.DurationVar(&opts.latency, "latency", 0, "delay added to every query")
	flags.DurationVar(&opts.jitter, "jitter", 0, "random extra delay of up to this much per query")
	flags.Float64Var(&opts.failRate, "fail-rate", 0, "share of queries that fail, between 0 and 1")
	flags.BoolVar(&opts.debug, "debug", false, "log every keystroke and query outcome")
	flags.StringVar(&opts.logFile, "log-file", "", "log file (default from config)")
	rootCmd.MarkFlagsMutuallyExclusive("data", "repos", "url")

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		newQueryCmd(opts),
		newServeCmd(opts),
		newInitCmd(opts),
	)
	return rootCmd
}

// setup loads the config, applies flags and redirects logging
func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	o.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	if cfg.Log.File != "" {
		logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Printf("Could not open log file: %v", err)
		} else {
			o.logSink = logFile
			log.SetOutput(logFile)
		}
	}
	return nil
}

func (o *options) teardown() {
	if o.logSink != nil {
		log.SetOutput(os.Stderr)
		_ = o.logSink.Close()
		o.logSink = nil
	}
}

func (o *options) loadConfig() (*config.Config, error) {
	svc := config.NewConfigService()
	if o.configPath != "" {
		return svc.LoadFromPath(o.configPath)
	}
	if _, err := os.Stat(config.FileName); err == nil {
		return svc.LoadFromPath(config.FileName)
	}
	return svc.Load()
}

// applyFlags overrides config values with the flags given on the command line
func (o *options) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	switch {
	case flags.Changed("data"):
		cfg.Source.Kind = config.SourceMemory
		cfg.Source.Path = o.data
	case flags.Changed("repos"):
		cfg.Source.Kind = config.SourceRepos
		cfg.Source.Path = o.repos
	case flags.Changed("url"):
		cfg.Source.Kind = config.SourceHTTP
		cfg.Source.URL = o.url
	}
	if flags.Changed("latency") {
		cfg.Source.Latency = config.Duration{Duration: o.latency}
	}
	if flags.Changed("jitter") {
		cfg.Source.Jitter = config.Duration{Duration: o.jitter}
	}
	if flags.Changed("fail-rate") {
		cfg.Source.FailureRate = o.failRate
	}
	if flags.Changed("debug") {
		cfg.Log.Debug = o.debug
	}
	if flags.Changed("log-file") {
		cfg.Log.File = o.logFile
	}
}

// widgetOptions maps config values onto widget options
func widgetOptions(cfg *config.Config) autocomplete.Options {
	opts := autocomplete.DefaultOptions()
	opts.Debounce = cfg.Widget.Debounce.Duration
	opts.MinChars = cfg.Widget.MinChars
	opts.Limit = cfg.Widget.SuggestionsLimit
	opts.PreserveInputOnSubmit = cfg.Widget.PreserveInputOnSubmit
	opts.Placeholder = cfg.Widget.Placeholder
	opts.KeyMap = autocomplete.NewKeyMap(cfg.Keys.Up, cfg.Keys.Down, cfg.Keys.Submit, cfg.Keys.Cancel)
	opts.Debug = cfg.Log.Debug
	return opts
}

func (o *options) runTUI(ctx context.Context) error {
	bus := eventbus.NewWithLogger(log.Default())
	defer bus.Close()

	exec, err := buildExecutor(ctx, o.cfg, bus, log.Default())
	if err != nil {
		return err
	}
	defer exec.Close()

	styles := views.NewStyles()
	renderer := views.NewSuggestionRenderer(styles)

	wopts := widgetOptions(o.cfg)
	wopts.Executor = exec
	wopts.Renderer = renderer
	wopts.Bus = bus
	wopts.Logger = log.Default()
	wopts.OnSubmit = func(s domain.Submission) {
		log.Printf("Submitted %q (id %q, by %s)", s.Query, s.ID, s.Initiator)
	}
	widget, err := autocomplete.New(wopts)
	if err != nil {
		return err
	}

	model := ui.NewModel(ui.Params{
		Title:    "autosearch",
		Source:   exec.Description(),
		Widget:   widget,
		Renderer: renderer,
		Styles:   styles,
		Ready:    os.Getenv(e2eEnv) == "1",
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	model.SetProgram(p)

	// Forward background events to the UI
	eventChan := make(chan eventbus.DomainEvent, 100)
	forward := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			log.Println("Event channel full, dropping event")
		}
	}
	for _, t := range []eventbus.EventType{eventbus.EventSourceReloaded, eventbus.EventScanCompleted, eventbus.EventError} {
		unsubscribe := bus.Subscribe(t, forward)
		defer unsubscribe()
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case e := <-eventChan:
				p.Send(ui.EventMsg{Event: e})
			}
		}
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
