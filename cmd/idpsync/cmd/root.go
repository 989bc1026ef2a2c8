package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/PratikDhanave/idp-hook-bridge/internal/config"
	"github.com/PratikDhanave/idp-hook-bridge/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  logrus.FieldLogger
)

var rootCmd = &cobra.Command{
	Use:   "idpsync",
	Short: "Operator tooling for the IdP hook bridge",
	Long: `idpsync provisions the integrations the bridge depends on and maintains
its dedup store.

It reads the same configuration and secrets as the service.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		level := cfg.Logging.Level
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = "debug"
		}
		logger = logging.NewWithWriter(cmd.ErrOrStderr(), level, "text")
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or /etc/idpsync/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")

	rootCmd.AddCommand(duoAdminAPICmd, oktaHookCmd, sweepEventsCmd, seedCmd)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
