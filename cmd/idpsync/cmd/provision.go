package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PratikDhanave/idp-hook-bridge/internal/bootstrap"
	"github.com/PratikDhanave/idp-hook-bridge/internal/config"
	"github.com/PratikDhanave/idp-hook-bridge/internal/store"
)

var (
	duoAdminAPIName string
	oktaHookName    string
	oktaHookURL     string
)

var duoAdminAPICmd = &cobra.Command{
	Use:   "duo-admin-api",
	Short: "Create the Duo Admin API integration the bridge signs with",
	Long: `Replace the Duo Admin API integration called --name with a fresh one and
print its keys.

The request is signed with the configured recipient integration, which must
be a parent integration allowed to manage integrations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		creds, err := bootstrap.LoadSecrets(ctx, cfg)
		if err != nil {
			return err
		}
		client, err := bootstrap.NewDuoClient(cfg, creds, logger)
		if err != nil {
			return err
		}

		integration, err := client.SetupAdminAPI(ctx, duoAdminAPIName)
		if err != nil {
			return fmt.Errorf("failed to set up admin api %s: %w", duoAdminAPIName, err)
		}
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"integrationKey":  integration.IntegrationKey,
			"signatureSecret": integration.SecretKey,
		})
	},
}

var oktaHookCmd = &cobra.Command{
	Use:   "okta-hook",
	Short: "Register the Okta event hook pointing at the bridge",
	Long: `Replace the Okta event hook called --name with one delivering every
supported event type to --endpoint, then ask Okta to verify it.

The bridge must already be reachable at --endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		creds, err := bootstrap.LoadSecrets(ctx, cfg)
		if err != nil {
			return err
		}
		client, err := bootstrap.NewOktaClient(ctx, cfg, creds, logger)
		if err != nil {
			return err
		}

		hook, err := client.SetupEventHook(ctx, oktaHookName, oktaHookURL, creds.RecipientAuthorizationSecret)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"id":                 hook.Id,
			"name":               hook.Name,
			"status":             hook.Status,
			"verificationStatus": hook.VerificationStatus,
		})
	},
}

var sweepEventsCmd = &cobra.Command{
	Use:   "sweep-events",
	Short: "Delete expired dedup records from Postgres",
	Long: `Postgres does not expire rows on its own; run this periodically when
dedup.backend is postgres. Redis and DynamoDB expire records natively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Dedup.Backend != config.DedupPostgres {
			return errors.New("sweep-events requires dedup.backend postgres")
		}
		ctx := cmd.Context()
		st, err := store.NewPostgresStore(ctx, cfg.Dedup.Postgres.URL)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.DeleteExpired(ctx)
		if err != nil {
			return fmt.Errorf("failed to sweep expired events: %w", err)
		}
		logger.WithField("deleted", n).Info("swept expired events")
		return nil
	},
}

func init() {
	duoAdminAPICmd.Flags().StringVar(&duoAdminAPIName, "name", "", "integration name")
	_ = duoAdminAPICmd.MarkFlagRequired("name")

	oktaHookCmd.Flags().StringVar(&oktaHookName, "name", "", "event hook name")
	oktaHookCmd.Flags().StringVar(&oktaHookURL, "endpoint", "", "public URL of POST /hooks/okta")
	_ = oktaHookCmd.MarkFlagRequired("name")
	_ = oktaHookCmd.MarkFlagRequired("endpoint")
}
