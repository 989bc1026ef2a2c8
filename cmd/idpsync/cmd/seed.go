package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PratikDhanave/idp-hook-bridge/internal/bootstrap"
	"github.com/PratikDhanave/idp-hook-bridge/internal/seeder"
)

var (
	seedSource  string
	seedURL     string
	seedCount   int
	seedBatches int
	seedTypes   string
	seedSeed    int64
	seedDryRun  bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Send synthetic IdP deliveries to a running bridge",
	Long: `Generate fake Auth0 or Okta deliveries and post them to the bridge with the
configured shared secret. Users in generated events are random, so most
events fail at the directory lookup; this exercises routing, auth, dedup
and failure handling rather than provisioning.

Examples:
  idpsync seed --source okta --url http://localhost:8080/hooks/okta --count 20
  idpsync seed --source auth0 --types block,unblock --dry-run`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedSeed != 0 {
		seeder.Seed(seedSeed)
	}
	var types []string
	if seedTypes != "" {
		types = strings.Split(seedTypes, ",")
	}

	var sender *seeder.Sender
	if !seedDryRun {
		if seedURL == "" {
			return fmt.Errorf("--url required unless --dry-run")
		}
		creds, err := bootstrap.LoadSecrets(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		sender = seeder.NewSender(seedURL, creds.RecipientAuthorizationSecret)
	}

	for i := 0; i < seedBatches; i++ {
		var payload any
		switch seedSource {
		case "okta":
			payload = seeder.OktaDelivery(seedCount, types)
		case "auth0":
			batch, err := seeder.Auth0Batch(seedCount, types)
			if err != nil {
				return err
			}
			payload = batch
		default:
			return fmt.Errorf("unknown source %q (supported: auth0, okta)", seedSource)
		}

		if seedDryRun {
			if err := printJSON(cmd.OutOrStdout(), payload); err != nil {
				return err
			}
			continue
		}

		status, body, err := sender.Send(cmd.Context(), payload)
		if err != nil {
			return err
		}
		logger.WithField("batch", i+1).WithField("status", status).WithField("body", body).Info("delivery sent")
	}
	return nil
}

func init() {
	seedCmd.Flags().StringVar(&seedSource, "source", "okta", "delivery format: auth0 or okta")
	seedCmd.Flags().StringVar(&seedURL, "url", "", "bridge hook URL")
	seedCmd.Flags().IntVar(&seedCount, "count", 10, "events per delivery")
	seedCmd.Flags().IntVar(&seedBatches, "batches", 1, "number of deliveries")
	seedCmd.Flags().StringVar(&seedTypes, "types", "", "comma-separated event types (okta) or kinds (auth0)")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 0, "random seed for reproducible output")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "print deliveries instead of sending them")
}
