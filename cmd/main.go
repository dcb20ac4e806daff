// Command gestured watches multitouch input devices and launches
// configured shell actions for the taps and swipes it recognizes.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gestured/gestured/internal/adapters/dispatch"
	"github.com/gestured/gestured/internal/adapters/evdev"
	service "github.com/gestured/gestured/internal/app"
	"github.com/gestured/gestured/internal/buildinfo"
	"github.com/gestured/gestured/internal/config"
	"github.com/gestured/gestured/internal/domain/gesture"
	"github.com/gestured/gestured/internal/domain/match"
	"github.com/gestured/gestured/internal/domain/touch"
	"github.com/gestured/gestured/internal/eventsim"
	"github.com/gestured/gestured/pkg/logger"
)

var (
	rulesPath string
	logLevel  string
	logFormat string
	dryRun    bool

	simType      string
	simFingers   int
	simDirection string
	simDistance  int
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gestured",
		Short: "Multitouch gesture daemon",
		Long: "gestured reads multitouch events from input devices, recognizes taps\n" +
			"and swipes, and launches the shell actions configured for them.",
		SilenceUsage: true,
		RunE:         runDaemon,
	}

	rootCmd.PersistentFlags().StringVar(&rulesPath, "config", "", "rule file to load instead of the search path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override the configured log format (text, json)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log matched actions instead of launching them")

	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadSettings layers the engine settings and applies the CLI log
// overrides before any component asks for a named logger.
func loadSettings(ctx context.Context) (*config.Settings, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	log := logger.Get()
	if err := logger.SetFormatString(cfg.LogFormat); err != nil {
		log.Warn(ctx, "invalid log format, falling back to text",
			logger.String("log_format", cfg.LogFormat),
			logger.Error(err))
		_ = logger.SetFormatString("text")
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log level, falling back to info",
			logger.String("log_level", cfg.LogLevel),
			logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	return cfg, nil
}

// runDaemon runs the engine until SIGINT or SIGTERM, rebuilding it from
// fresh settings and rules whenever SIGHUP arrives.
func runDaemon(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	log := logger.Get()

	for {
		cfg, err := loadSettings(ctx)
		if err != nil {
			return err
		}

		devices, err := config.LoadRules(rulesPath)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			if rulesPath != "" {
				return fmt.Errorf("no devices configured in %s", rulesPath)
			}
			return fmt.Errorf("no devices configured; searched %s",
				strings.Join(config.SearchLocations(), ", "))
		}

		opts := []service.Option{
			service.WithSettings(cfg),
			service.WithDevices(devices),
			service.WithLogger(log.Named("service")),
		}
		if dryRun {
			opts = append(opts, service.WithRunner(dispatch.NewLogRunner(log.Named("dry-run"))))
		}

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- service.New(opts...).Run(runCtx)
		}()

		select {
		case <-hup:
			log.Info(ctx, "reload requested, restarting engine")
			cancel()
			if err := <-done; err != nil {
				log.Error(ctx, "engine stopped during reload", logger.Error(err))
			}
			if ctx.Err() != nil {
				return nil
			}
		case err := <-done:
			cancel()
			if err != nil {
				return err
			}
			log.Info(ctx, "engine stopped")
			return nil
		}
	}
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List input devices known to the kernel",
		Args:  cobra.NoArgs,
		RunE:  runDevicesCmd,
	}
}

func runDevicesCmd(cmd *cobra.Command, _ []string) error {
	devices, err := evdev.ListDevices()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(devices) == 0 {
		fmt.Fprintln(out, "no input devices found")
		return nil
	}
	for _, d := range devices {
		if d.Path == "" {
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", d.Path, d.Name)
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate settings and rule files",
		Args:  cobra.NoArgs,
		RunE:  runCheckCmd,
	}
}

func runCheckCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd.Context())
	if err != nil {
		return err
	}

	devices, err := config.LoadRules(rulesPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "settings: tap distance %.0f, direction bias %.2f, debounce %s\n",
		cfg.MaxTapDistance, cfg.DirectionBias, cfg.Debounce())

	if len(devices) == 0 {
		fmt.Fprintln(out, "no devices configured")
		if rulesPath == "" {
			fmt.Fprintln(out, "searched:")
			for _, loc := range config.SearchLocations() {
				fmt.Fprintf(out, "  %s\n", loc)
			}
		}
		return nil
	}

	for _, d := range devices {
		fmt.Fprintf(out, "%s: %d rules\n", d.Path, len(d.Rules))
		for _, r := range d.Rules {
			if r.Kind == gesture.KindSwipe {
				fmt.Fprintf(out, "  %d-finger swipe %s -> %s\n", r.Fingers, r.Direction, r.Action)
				continue
			}
			fmt.Fprintf(out, "  %d-finger tap -> %s\n", r.Fingers, r.Action)
		}
	}
	return nil
}

func newSimulateCmd() *cobra.Command {
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a synthetic gesture through the engine",
		Args:  cobra.NoArgs,
		RunE:  runSimulateCmd,
	}

	simulateCmd.Flags().StringVar(&simType, "type", "swipe", "gesture type (tap, swipe)")
	simulateCmd.Flags().IntVar(&simFingers, "fingers", 3, "number of fingers")
	simulateCmd.Flags().StringVar(&simDirection, "direction", "right", "swipe direction (up, down, left, right)")
	simulateCmd.Flags().IntVar(&simDistance, "distance", 240, "swipe travel in device units")

	return simulateCmd
}

func runSimulateCmd(cmd *cobra.Command, _ []string) error {
	if simFingers < 1 {
		return fmt.Errorf("--fingers must be at least 1, got %d", simFingers)
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}

	kind, err := gesture.ParseKind(simType)
	if err != nil {
		return err
	}

	var batch []touch.Update
	switch kind {
	case gesture.KindTap:
		batch = eventsim.Tap(simFingers)
	case gesture.KindSwipe:
		dir, err := gesture.ParseDirection(simDirection)
		if err != nil {
			return err
		}
		batch = eventsim.Swipe(simFingers, dir, int32(simDistance))
	}

	tracker := touch.NewTracker()
	rec := gesture.New(
		gesture.WithTapDistance(cfg.MaxTapDistance),
		gesture.WithDirectionBias(cfg.DirectionBias),
		gesture.WithDebounce(0),
	)

	out := cmd.OutOrStdout()
	for _, u := range batch {
		frame, ok := tracker.Apply(u)
		if !ok {
			continue
		}
		res := rec.Advance(frame)
		switch {
		case res.Emitted:
			fmt.Fprintf(out, "classified: %s (travel %.0f)\n", res.Descriptor, res.Descriptor.Magnitude)
			if err := printMatches(out, res.Descriptor); err != nil {
				return err
			}
		case res.Completed:
			fmt.Fprintln(out, "discarded: touch sequence did not classify")
		}
	}
	return nil
}

func printMatches(out io.Writer, d gesture.Descriptor) error {
	devices, err := config.LoadRules(rulesPath)
	if err != nil {
		return err
	}

	matched := false
	for _, dev := range devices {
		if rule, ok := match.First(dev.Rules, d); ok {
			fmt.Fprintf(out, "%s would run: %s\n", dev.Path, rule.Action)
			matched = true
		}
	}
	if !matched {
		fmt.Fprintln(out, "no configured rule matches")
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gestured %s (go%s/%s)\n",
				buildinfo.Version(), runtime.Version(), runtime.GOOS)
			return err
		},
	}
}
