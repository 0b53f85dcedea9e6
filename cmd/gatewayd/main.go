// Command gatewayd runs the melsec-gateway device supervisor: it connects
// to every configured PLC and robot controller, publishes their tag trees,
// and hot-reloads the fleet whenever the configuration directory changes.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CaptainPineapple/melsec-gateway/internal/logging"
	"github.com/CaptainPineapple/melsec-gateway/supervisor"
	"github.com/CaptainPineapple/melsec-gateway/tagserver"
)

// app holds the flags shared by every subcommand.
type app struct {
	configDir string
	logLevel  string
	logJSON   bool
}

var a = &app{}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "gatewayd",
	Short:         "Industrial-protocol gateway for MELSEC PLCs and R3 robot controllers",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.SetLevel(a.logLevel); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		if a.logJSON {
			logging.SetJSONFormat()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&a.configDir, "config-dir", "config", "directory containing clients.json and the specification documents")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "emit logs as JSON instead of text")

	rootCmd.AddCommand(validateCmd, statusCmd)
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := supervisor.NewSupervisor(a.configDir, tagserver.NewInMemory())
	logging.Log.WithField("config_dir", a.configDir).Info("gatewayd: starting")
	err := sup.Run(ctx)
	if err != nil && ctx.Err() != nil {
		logging.Log.Info("gatewayd: shutting down")
		return nil
	}
	return err
}
