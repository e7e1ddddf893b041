package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rezepte/cmd/rezepte/listview"
	"rezepte/internal/api"
	"rezepte/internal/config"
	"rezepte/internal/logging"
	"rezepte/internal/session"
	"rezepte/internal/viewmodel"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// app carries the global flags and the state resolved from them.
type app struct {
	// Global flags
	configPath  string
	apiURL      string
	sessionFile string
	userID      int
	username    string
	verbose     bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "rezepte",
		Short: "Rezepte - terminal client for your recipe collection",
		Long: `rezepte lists, searches, creates and deletes recipes stored by the
recipe backend at /api/v1/rezepte.

Run without arguments to start the interactive screen. Recipes are only shown
to a logged-in user; the session is read from the session file written by the
login flow (or set with --user-id/--username).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultConfigPath(), "Config file")
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Recipe API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&a.sessionFile, "session", "", "Session file (overrides config)")
	rootCmd.PersistentFlags().IntVar(&a.userID, "user-id", 0, "Act as this user instead of the session file")
	rootCmd.PersistentFlags().StringVar(&a.username, "username", "", "Display name for --user-id")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		a.newListCmd(),
		a.newAddCmd(),
		a.newDeleteCmd(),
		a.newServeCmd(),
		a.newSessionCmd(),
	)
	return rootCmd
}

// setup loads config, applies flag overrides and initializes logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.sessionFile != "" {
		cfg.Session.File = a.sessionFile
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	// The interactive screen owns the terminal: log to a file or not at all.
	if cmd.Root() == cmd && cfg.Logging.File == "" {
		logging.Reset()
		return nil
	}
	if err := logging.Initialize(cfg.LoggingOptions()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.Boot("rezepte %s starting", cmd.Name())
	logging.BootDebug("config loaded from %s (api=%s)", a.configPath, cfg.API.BaseURL)
	return nil
}

// session returns the flag session if --user-id is set, the session file otherwise.
func (a *app) session() (session.Session, error) {
	if a.userID > 0 {
		return session.LoggedIn(a.userID, a.username), nil
	}
	return session.Load(a.cfg.Session.File)
}

func (a *app) client() *api.Client {
	return api.New(a.cfg.API.BaseURL, api.WithTimeout(a.cfg.GetAPITimeout()))
}

func (a *app) viewModel(sess session.Session) *viewmodel.ViewModel {
	return viewmodel.New(a.client(), sess, viewmodel.WithDarkMode(a.cfg.UI.DarkMode))
}

func (a *app) runInteractive(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := a.session()
	if err != nil {
		return err
	}
	vm := a.viewModel(sess)

	var opts []listview.Option
	if !a.cfg.UI.Markdown {
		opts = append(opts, listview.WithPlainInstructions())
	}

	g, gctx := errgroup.WithContext(ctx)

	// Follow the session file unless the identity came from flags.
	if a.cfg.Session.Watch && a.userID == 0 {
		w, err := session.NewWatcher(a.cfg.Session.File, sess)
		if err != nil {
			logging.SessionWarn("session watcher disabled: %v", err)
		} else {
			if err := w.Start(gctx); err != nil {
				w.Stop()
				return err
			}
			opts = append(opts, listview.WithSessionUpdates(w.Updates()))
			g.Go(func() error {
				<-gctx.Done()
				w.Stop()
				return nil
			})
		}
	}

	uiCtx, cancelUI := context.WithCancel(gctx)
	g.Go(func() error {
		defer cancelUI()
		err := listview.Run(uiCtx, vm, opts...)
		stop()
		return err
	})
	return g.Wait()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
