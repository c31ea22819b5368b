package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/logcollector/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logcollector: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:           "logcollector",
		Short:         "Capture a device log stream into a filtered, optionally colored file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path (default ~/.config/logcollector/config.toml)")
	root.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "log verbosity; repeat for more")

	root.AddCommand(newRunCmd(&opts), newMonitorCmd(&opts), newStatusCmd(&opts))
	return root
}

func newRunCmd(opts *app.Options) *cobra.Command {
	var (
		capture, clearCmd, sink, background, apiBind string
		clearEvery                                   int
		clean, noAPI                                 bool
		filter, colors                               []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect until the stream ends or a signal arrives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			o := &opts.Overrides
			if flags.Changed("capture") {
				o.CaptureCommand = &capture
			}
			if flags.Changed("clear") {
				o.ClearCommand = &clearCmd
			}
			if flags.Changed("clear-every") {
				o.ClearEvery = &clearEvery
			}
			if flags.Changed("sink") {
				o.SinkPath = &sink
			}
			if flags.Changed("clean") {
				o.CleanCache = &clean
			}
			if flags.Changed("background") {
				o.Background = &background
			}
			if flags.Changed("api-bind") {
				o.APIBind = &apiBind
			}
			o.Filter = filter
			o.Colors = colors
			o.NoAPI = noAPI
			return app.Collect(cmd.Context(), *opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&capture, "capture", "", `capture command (default "logcat -v time")`)
	f.StringVar(&clearCmd, "clear", "", `buffer clear command; empty disables (default "logcat -c")`)
	f.IntVar(&clearEvery, "clear-every", 1, "run the clear command after every N lines; 0 disables")
	f.StringVar(&sink, "sink", "", "sink file path")
	f.BoolVar(&clean, "clean", false, "truncate the sink instead of appending")
	f.StringSliceVar(&filter, "filter", nil, "categories to keep, by name or tag (default all)")
	f.StringSliceVar(&colors, "colors", nil, "per-category colors in catalog order; enables colored output")
	f.StringVar(&background, "background", "", "page color of colored sinks")
	f.StringVar(&apiBind, "api-bind", "", "status API listen address")
	f.BoolVar(&noAPI, "no-api", false, "do not serve the status API")
	return cmd
}

func newMonitorCmd(opts *app.Options) *cobra.Command {
	var apiBind string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch a running collector in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("api-bind") {
				opts.Overrides.APIBind = &apiBind
			}
			return app.Monitor(cmd.Context(), *opts)
		},
	}
	cmd.Flags().IntVar(&opts.PollEvery, "poll", 0, "refresh interval in seconds (defaults to 2s)")
	cmd.Flags().StringVar(&opts.PrefsPath, "prefs", "", "prefs file path (default ~/.config/logcollector/prefs.toml)")
	cmd.Flags().StringVar(&apiBind, "api-bind", "", "collector status API address")
	return cmd
}

func newStatusCmd(opts *app.Options) *cobra.Command {
	var apiBind string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the status of a running collector as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("api-bind") {
				opts.Overrides.APIBind = &apiBind
			}
			return app.PrintStatus(cmd.Context(), cmd.OutOrStdout(), *opts)
		},
	}
	cmd.Flags().StringVar(&apiBind, "api-bind", "", "collector status API address")
	return cmd
}
