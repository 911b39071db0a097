package cli

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/poputchiki/internal/client/app"
	"github.com/dmitrijs2005/poputchiki/internal/client/client"
	"github.com/dmitrijs2005/poputchiki/internal/client/config"
	"github.com/dmitrijs2005/poputchiki/internal/client/dom"
	"github.com/dmitrijs2005/poputchiki/internal/client/router"
	"github.com/dmitrijs2005/poputchiki/internal/client/session"
	"github.com/dmitrijs2005/poputchiki/internal/client/views"
	"github.com/dmitrijs2005/poputchiki/internal/filex"
	"github.com/dmitrijs2005/poputchiki/internal/logging"
	"github.com/spf13/cobra"
)

// env is everything a command needs, built once per invocation.
type env struct {
	shell *Shell
	app   *app.App
	close func()
}

// setup is a package var so command wiring can be tested without a network
// or a cookie store on disk.
var setup = newEnv

func newEnv(ctx context.Context, cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	log := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, true)

	path := cfg.SessionLocation()
	if cfg.SessionBackend != config.BackendPebble {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, err
		}
	}
	repo, err := session.OpenRepository(ctx, cfg.SessionBackend, path, log)
	if err != nil {
		return nil, err
	}

	a, err := buildApp(cfg, session.NewStore(repo, cfg.CookieMaxAge, log), log)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	return &env{
		shell: NewShell(a, cmd.InOrStdin(), cmd.OutOrStdout(), log),
		app:   a,
		close: func() {
			a.Close()
			if err := repo.Close(); err != nil {
				log.Warn(ctx, "closing session store", "error", err)
			}
		},
	}, nil
}

func buildApp(cfg *config.Config, store app.CredentialStore, log logging.Logger) (*app.App, error) {
	api, err := client.NewHTTPClient(client.Options{
		BaseURL:   cfg.APIBaseURL,
		VideoPath: cfg.VideoUploadPath,
		Timeout:   cfg.RequestTimeout,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}
	doc, err := dom.NewPage()
	if err != nil {
		return nil, err
	}
	renderer, err := views.NewRenderer(doc, log)
	if err != nil {
		return nil, err
	}
	rt, err := router.New(cfg.APIBaseURL, log)
	if err != nil {
		return nil, err
	}
	return app.New(app.Options{
		Store:             store,
		API:               api,
		Doc:               doc,
		Renderer:          renderer,
		Router:            rt,
		RealtimeURL:       cfg.RealtimeURL,
		HideDelay:         cfg.ProgressHideDelay,
		MaxImageDimension: cfg.MaxImageDimension,
		Logger:            log,
	})
}

// command is a subcommand body running against a restored session.
type command func(ctx context.Context, e *env, args []string) error

// withSession restores the stored session, runs fn and releases everything.
// A failed restore is reported but does not stop anonymous commands.
func withSession(fn command) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		e, err := setup(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.app.Start(ctx); err != nil {
			printlnFn(errorStyle.Render("restoring session failed: " + err.Error()))
		}
		if _, err := e.app.Router().Navigate(ctx, "/"); err != nil {
			return err
		}
		return fn(ctx, e, args)
	}
}

func subcommand(use, short string, args cobra.PositionalArgs, fn command) *cobra.Command {
	return &cobra.Command{Use: use, Short: short, Args: args, RunE: withSession(fn)}
}

// NewRootCommand builds the poputchiki command tree. Without a subcommand
// it starts the interactive REPL.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "poputchiki",
		Short:         "Terminal client for the poputchiki social network",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, e *env, _ []string) error {
			runREPL(ctx, e.shell, e.shell.status, e.shell.reader)
			return nil
		}),
	}
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(
		subcommand("register", "Create an account and sign in", cobra.NoArgs,
			func(ctx context.Context, e *env, _ []string) error { return e.shell.Register(ctx) }),
		subcommand("login", "Sign in and remember the session", cobra.NoArgs,
			func(ctx context.Context, e *env, _ []string) error { return e.shell.Login(ctx) }),
		subcommand("logout", "Forget the stored session", cobra.NoArgs,
			func(ctx context.Context, e *env, _ []string) error { return e.shell.Logout(ctx) }),
		subcommand("whoami", "Show the signed-in user", cobra.NoArgs,
			func(ctx context.Context, e *env, _ []string) error { return e.shell.WhoAmI(ctx) }),
		subcommand("profile", "Edit the profile", cobra.NoArgs,
			func(ctx context.Context, e *env, _ []string) error { return e.shell.EditProfile(ctx) }),
		subcommand("upload <file>", "Upload a profile photo", cobra.ExactArgs(1),
			func(ctx context.Context, e *env, args []string) error { return e.shell.UploadPhoto(ctx, args[0]) }),
		subcommand("video <file>", "Upload a video", cobra.ExactArgs(1),
			func(ctx context.Context, e *env, args []string) error { return e.shell.UploadVideo(ctx, args[0]) }),
		subcommand("open <path>", "Navigate to a page path and print it", cobra.ExactArgs(1),
			func(ctx context.Context, e *env, args []string) error {
				if err := e.shell.Open(ctx, args[0]); err != nil {
					return err
				}
				return e.shell.Show(ctx, "")
			}),
		subcommand("show [id]", "Print the page or one element of it", cobra.MaximumNArgs(1),
			func(ctx context.Context, e *env, args []string) error {
				id := ""
				if len(args) == 1 {
					id = args[0]
				}
				return e.shell.Show(ctx, id)
			}),
	)
	return root
}

// Execute runs the command tree with os.Args.
func Execute(ctx context.Context, out io.Writer) error {
	root := NewRootCommand()
	if out != nil {
		root.SetOut(out)
	}
	err := root.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
