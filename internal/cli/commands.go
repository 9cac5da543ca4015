package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"themehint/internal/app"
	"themehint/internal/gui"
	"themehint/internal/ipc"
	"themehint/internal/theme"
	"themehint/internal/wm"
	"themehint/pkg/config"
	"themehint/pkg/logger"
)

// targetFlags selects the process whose windows are themed.
type targetFlags struct {
	pid      int
	children bool
}

func (t *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&t.pid, "pid", 0, "theme the windows of this process instead of themehint itself")
	cmd.Flags().BoolVar(&t.children, "children", true, "include descendants of --pid")
}

func (t *targetFlags) apply(cmd *cobra.Command, cfg *config.Config) *config.Config {
	if !cmd.Flags().Changed("pid") && !cmd.Flags().Changed("children") {
		return cfg
	}
	pid := cfg.TargetPID()
	if cmd.Flags().Changed("pid") {
		pid = t.pid
	}
	children := cfg.IncludeChildren()
	if cmd.Flags().Changed("children") {
		children = t.children
	}
	return cfg.WithTarget(pid, children)
}

// setup loads config and logging and builds the application pipeline.
func setup(cmd *cobra.Command, opts *rootOptions, target *targetFlags, appOpts ...app.Option) (*app.App, *logger.Logger, error) {
	cfg, log, err := bootstrap(opts)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(target.apply(cmd, cfg), log, appOpts...)
	if err != nil {
		log.Error("Failed to create application", err)
		return nil, nil, err
	}
	return a, log, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	var headless bool
	target := &targetFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the host and theme windows on start and activation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, log, err := setup(cmd, opts, target)
			if err != nil {
				return err
			}
			defer log.Close()
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()

			if headless {
				return a.RunHeadless(ctx)
			}
			return gui.Run(ctx, a, opts.debug)
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "run without a window, triggered by the socket")
	target.register(cmd)
	return cmd
}

func newApplyCommand(opts *rootOptions) *cobra.Command {
	var variant string
	target := &targetFlags{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the theme variant once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var appOpts []app.Option
			if variant != "" {
				appOpts = append(appOpts, app.WithVariantOverride(variant))
			}
			a, log, err := setup(cmd, opts, target, appOpts...)
			if err != nil {
				return err
			}
			defer log.Close()
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()

			v, err := a.Variant(ctx)
			if err != nil {
				return err
			}
			return runPass(ctx, cmd.OutOrStdout(), a, v)
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "variant to apply (dark, light, none, auto)")
	target.register(cmd)
	return cmd
}

func newClearCommand(opts *rootOptions) *cobra.Command {
	target := &targetFlags{}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the theme hint from the windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, log, err := setup(cmd, opts, target)
			if err != nil {
				return err
			}
			defer log.Close()
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()
			return runPass(ctx, cmd.OutOrStdout(), a, theme.None)
		},
	}
	target.register(cmd)
	return cmd
}

func newListCommand(opts *rootOptions) *cobra.Command {
	var all bool
	target := &targetFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the windows that would be themed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, log, err := setup(cmd, opts, target)
			if err != nil {
				return err
			}
			defer log.Close()
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()

			windows, err := a.Windows(ctx, all)
			if err != nil {
				return err
			}
			printWindows(cmd.OutOrStdout(), windows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every client window with its owner")
	target.register(cmd)
	return cmd
}

func newSendCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "send activate|start|stop",
		Short:     "Send a trigger to a running headless host",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{ipc.CommandActivate, ipc.CommandStart, ipc.CommandStop},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer log.Close()

			resp, err := ipc.SendCommand(cfg.SocketPath(), args[0])
			if err != nil {
				return err
			}
			if resp.Status != "success" {
				return fmt.Errorf("%s: %s", args[0], resp.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

// runPass applies v once and fails when the query or any window fails.
func runPass(ctx context.Context, out io.Writer, a *app.App, v theme.Variant) error {
	outcome, err := a.Apply(ctx, v)
	if err != nil {
		return err
	}
	printOutcome(out, outcome)
	return outcome.Err()
}

func printOutcome(out io.Writer, o *theme.BatchOutcome) {
	failed := make(map[wm.Handle]error, len(o.Failures))
	for _, f := range o.Failures {
		failed[f.Handle] = f.Err
	}
	for _, h := range o.Handles {
		if err, ok := failed[h]; ok {
			fmt.Fprintf(out, "%s\tfailed\t%v\n", h, err)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", h, o.Variant)
	}
	fmt.Fprintf(out, "%d windows, %d failed\n", len(o.Handles), len(o.Failures))
}

func printWindows(out io.Writer, windows []wm.Ownership) {
	for _, w := range windows {
		if w.PID == 0 {
			fmt.Fprintf(out, "%s\t-\n", w.Handle)
			continue
		}
		fmt.Fprintf(out, "%s\t%d\n", w.Handle, w.PID)
	}
}
