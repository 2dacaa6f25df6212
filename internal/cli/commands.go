package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/iudanet/clipsync/internal/config"
	"github.com/iudanet/clipsync/internal/iocli"
)

// BuildInfo информация о сборке, задается через ldflags
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// rootOptions глобальные флаги
type rootOptions struct {
	fs         afero.Fs
	io         iocli.IO
	configPath string
	logLevel   string
}

// NewRootCommand собирает дерево команд clipsync
func NewRootCommand(info BuildInfo, cliIO iocli.IO, fs afero.Fs) *cobra.Command {
	opts := &rootOptions{io: cliIO, fs: fs}

	root := &cobra.Command{
		Use:           "clipsync",
		Short:         "Synchronize clipboard, settings and automation rules between devices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(cliIO)
	root.SetErr(cliIO)

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Path to config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override: debug, info, warn, error")

	root.AddCommand(
		newRunCommand(opts),
		newCopyCommand(opts),
		newSyncCommand(opts),
		newStatusCommand(opts),
		newConflictsCommand(opts),
		newResolveCommand(opts),
		newDevicesCommand(opts),
		newVersionCommand(info, cliIO),
	)
	return root
}

// withCli собирает приложение, выполняет fn и освобождает ресурсы
func withCli(ctx context.Context, opts *rootOptions, fn func(ctx context.Context, app *App, c *Cli) error) error {
	app, err := NewApp(ctx, AppOptions{
		FS:         opts.fs,
		ConfigPath: opts.configPath,
		LogLevel:   opts.logLevel,
	}, opts.io)
	if err != nil {
		return err
	}

	err = fn(ctx, app, New(opts.io, app.Engine))
	if closeErr := app.Close(context.Background()); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sync engine and scheduler until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withCli(ctx, opts, func(ctx context.Context, app *App, c *Cli) error {
				if !noWatch {
					w, err := app.WatchConfig(ctx)
					if err != nil {
						return err
					}
					defer func() {
						_ = w.Close()
					}()
				}
				return c.runDaemon(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload config file on change")
	return cmd
}

func newCopyCommand(opts *rootOptions) *cobra.Command {
	var copyOpts CopyOptions

	cmd := &cobra.Command{
		Use:   "copy [text...]",
		Short: "Queue clipboard text for delivery to other devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			copyOpts.Text = strings.Join(args, " ")
			return withCli(cmd.Context(), opts, func(ctx context.Context, _ *App, c *Cli) error {
				return c.runCopy(ctx, copyOpts)
			})
		},
	}
	cmd.Flags().StringVar(&copyOpts.Source, "source", "cli", "Source application name")
	cmd.Flags().IntVar(&copyOpts.Priority, "priority", 0, "Delivery priority (lower is sent first)")
	return cmd
}

func newSyncCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push pending items and pull remote changes once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCli(cmd.Context(), opts, func(ctx context.Context, _ *App, c *Cli) error {
				return c.runSync(ctx)
			})
		},
	}
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCli(cmd.Context(), opts, func(_ context.Context, _ *App, c *Cli) error {
				return c.runStatus()
			})
		},
	}
}

func newConflictsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List unresolved conflicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCli(cmd.Context(), opts, func(_ context.Context, _ *App, c *Cli) error {
				return c.runConflicts()
			})
		},
	}
}

func newResolveCommand(opts *rootOptions) *cobra.Command {
	var keep string

	cmd := &cobra.Command{
		Use:   "resolve <conflict-id>",
		Short: "Resolve a conflict by keeping the local or remote version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCli(cmd.Context(), opts, func(ctx context.Context, _ *App, c *Cli) error {
				return c.runResolve(ctx, args[0], keep)
			})
		},
	}
	cmd.Flags().StringVar(&keep, "keep", "", "Version to keep: local or remote")
	_ = cmd.MarkFlagRequired("keep")
	return cmd
}

func newDevicesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List devices seen by this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCli(cmd.Context(), opts, func(_ context.Context, _ *App, c *Cli) error {
				return c.runDevices()
			})
		},
	}
}

func newVersionCommand(info BuildInfo, cliIO iocli.IO) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliIO.Printf("ClipSync\n")
			cliIO.Printf("Version:    %s\n", info.Version)
			cliIO.Printf("Build Date: %s\n", info.BuildDate)
			cliIO.Printf("Git Commit: %s\n", info.GitCommit)
			return nil
		},
	}
}

// Execute runs the root command and prints the error, returning the exit code.
func Execute(ctx context.Context, root *cobra.Command, cliIO iocli.IO) int {
	if err := root.ExecuteContext(ctx); err != nil {
		cliIO.Printf("Error: %v\n", err)
		return 1
	}
	return 0
}

