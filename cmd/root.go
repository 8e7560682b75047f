// Package cmd implements the seccage command-line interface: a single
// command that loads a profile, compiles it to a seccomp filter, and runs
// a target program inside the resulting sandbox.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"seccage/logging"
	"seccage/orchestrator"
)

// Version information set at build time via -ldflags.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// SpecVer is the profile schema version this build understands, reported
// alongside the binary version so operators can tell profile and binary
// compatibility apart.
const SpecVer = "1"

var (
	flagProfile   string
	flagBind      []string
	flagLogLevel  string
	flagLogFormat string
)

// rootCmd is seccage's single user-facing command. Its own positional
// arguments are everything before "--"; cobra's ArgsLenAtDash marks where
// the target program's argv begins.
var rootCmd = &cobra.Command{
	Use:   "seccage --profile=<name> [--bind=<spec>]... -- <program> [arg...]",
	Short: "Run a program inside a kernel-enforced seccomp sandbox",
	Long: `seccage compiles a JSON security profile into a classic BPF seccomp
filter, assembles a mount namespace and capability set around the target
program, and execs it under that filter.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
	Args:          cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
	RunE: runRoot,
}

func init() {
	rootCmd.Flags().StringVar(&flagProfile, "profile", "", "name of the security profile to load (required)")
	rootCmd.Flags().StringArrayVar(&flagBind, "bind", nil, "bind mount spec source:target[:ro], may be repeated")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log output format: text or json")

	rootCmd.AddCommand(sandboxInitCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd gives scripts a stable, parseable version report alongside
// cobra's own --version/-v flag, which only prints the bare version string.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("seccage version %s\n", Version)
	fmt.Printf("profile schema: %s\n", SpecVer)
	fmt.Printf("go: %s\n", runtime.Version())
	if BuildTime != "unknown" {
		fmt.Printf("build: %s\n", BuildTime)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runRoot(cmd *cobra.Command, args []string) error {
	dashAt := cmd.ArgsLenAtDash()
	if dashAt < 0 {
		return cmd.Help()
	}
	if flagProfile == "" {
		return cmd.Help()
	}

	cfg := orchestrator.Config{
		ProfileName:    flagProfile,
		BindMountSpecs: flagBind,
		Args:           args[dashAt:],
	}

	ctx := contextWithSignals()
	code, err := orchestrator.Run(ctx, cfg)
	if err != nil {
		logging.Error("sandbox run failed", "error", err)
	}
	os.Exit(code)
	return nil
}

// contextWithSignals returns a context canceled on SIGINT/SIGTERM. While
// it is registered those signals do not terminate the launcher; Run keeps
// forwarding them to the sandboxed process group, regardless of this
// cancellation, until the sandboxed process has exited.
func contextWithSignals() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

func setupLogging() {
	level := logging.ParseLevel(envOr("SECCAGE_LOG_LEVEL", flagLogLevel))
	format := envOr("SECCAGE_LOG_FORMAT", flagLogFormat)

	logger := logging.NewLogger(logging.Config{
		Level:  level,
		Format: format,
		Output: os.Stderr,
	})
	logging.SetDefault(logger)

	if level == slog.LevelDebug {
		logging.Debug("debug logging enabled")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
