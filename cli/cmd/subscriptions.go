package cmd

import (
	"errors"
	"fmt"

	"github.com/hookline/hookline/cli/pkg/output"
	"github.com/hookline/hookline/common/client"
	"github.com/spf13/cobra"
)

var subscriptionsCmd = &cobra.Command{
	Use:     "subscriptions",
	Aliases: []string{"subscription", "subs"},
	Short:   "Manage subscriptions in the active project",
}

var subscriptionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subscriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter client.SubscriptionFilter
		filter.Query, _ = cmd.Flags().GetString("query")
		filter.Page, _ = cmd.Flags().GetInt("page")
		filter.PerPage, _ = cmd.Flags().GetInt("per-page")

		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.subscriptions.ListSubscriptions(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list subscriptions: %w", err)
		}

		return printEnvelope(cmd, env, func(data interface{}) {
			subs := pageContent(data)
			if len(subs) == 0 {
				output.Info("No subscriptions found")
				return
			}

			table := output.NewTable([]string{"ID", "Name", "Status", "Source", "Endpoint", "Created"})
			for _, s := range subs {
				table.AddRow([]string{
					getString(s, "uid", "id"),
					getString(s, "name"),
					getString(s, "status"),
					getString(s, "source_metadata.name", "source_id"),
					getString(s, "endpoint_metadata.target_url", "endpoint_id"),
					shortTime(getString(s, "created_at")),
				})
			}
			table.Render()
			printPagination(data)
		})
	},
}

var subscriptionsGetCmd = &cobra.Command{
	Use:   "get <subscription-id>",
	Short: "Show one subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.subscriptions.GetSubscription(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get subscription: %w", err)
		}
		return printEnvelope(cmd, env, printSubscription)
	},
}

var subscriptionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a subscription",
	Example: `  hline subscriptions create --name orders --app app-1 --source src-1 --endpoint ep-1
  hline subscriptions create --file subscription.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := subscriptionFromFlags(cmd, true)
		if err != nil {
			return err
		}

		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.subscriptions.CreateSubscription(cmd.Context(), sub)
		if err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		return printEnvelope(cmd, env, printSubscription)
	},
}

var subscriptionsUpdateCmd = &cobra.Command{
	Use:   "update <subscription-id>",
	Short: "Update a subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := subscriptionFromFlags(cmd, false)
		if err != nil {
			return err
		}

		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.subscriptions.UpdateSubscription(cmd.Context(), args[0], sub)
		if err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}
		return printEnvelope(cmd, env, printSubscription)
	},
}

var subscriptionsDeleteCmd = &cobra.Command{
	Use:     "delete <subscription-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a subscription",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.subscriptions.DeleteSubscription(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return printEnvelope(cmd, env, nil)
	},
}

var subscriptionsToggleCmd = &cobra.Command{
	Use:   "toggle <subscription-id>",
	Short: "Switch a subscription between active and inactive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.subscriptions.ToggleSubscriptionStatus(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to toggle subscription: %w", err)
		}
		return printEnvelope(cmd, env, printSubscription)
	},
}

func printSubscription(data interface{}) {
	output.Info("ID:       %s", getString(data, "uid", "id"))
	output.Info("Name:     %s", getString(data, "name"))
	output.Info("Status:   %s", getString(data, "status"))
	output.Info("Source:   %s", getString(data, "source_metadata.name", "source_id"))
	output.Info("Endpoint: %s", getString(data, "endpoint_metadata.target_url", "endpoint_id"))
}

// subscriptionFromFlags reads --file or builds a document from the set flags.
// Updates send only the flags that were given.
func subscriptionFromFlags(cmd *cobra.Command, requireName bool) (client.Subscription, error) {
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		var sub client.Subscription
		if err := readJSONFile(cmd, file, &sub); err != nil {
			return nil, fmt.Errorf("failed to read subscription file: %w", err)
		}
		return sub, nil
	}

	sub := client.Subscription{}
	fields := map[string]string{
		"name":     "name",
		"app":      "app_id",
		"source":   "source_id",
		"endpoint": "endpoint_id",
	}
	for flag, key := range fields {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			sub[key] = v
		}
	}

	if requireName && sub["name"] == nil {
		return nil, errors.New("--name or --file is required")
	}
	if len(sub) == 0 {
		return nil, errors.New("nothing to update")
	}
	return sub, nil
}

func init() {
	rootCmd.AddCommand(subscriptionsCmd)
	subscriptionsCmd.AddCommand(subscriptionsListCmd)
	subscriptionsCmd.AddCommand(subscriptionsGetCmd)
	subscriptionsCmd.AddCommand(subscriptionsCreateCmd)
	subscriptionsCmd.AddCommand(subscriptionsUpdateCmd)
	subscriptionsCmd.AddCommand(subscriptionsDeleteCmd)
	subscriptionsCmd.AddCommand(subscriptionsToggleCmd)

	subscriptionsListCmd.Flags().StringP("query", "q", "", "filter by name")
	subscriptionsListCmd.Flags().Int("page", 1, "page number")
	subscriptionsListCmd.Flags().Int("per-page", 20, "results per page")

	for _, c := range []*cobra.Command{subscriptionsCreateCmd, subscriptionsUpdateCmd} {
		c.Flags().StringP("file", "f", "", "JSON subscription document (- for stdin)")
		c.Flags().String("name", "", "subscription name")
		c.Flags().String("app", "", "app id")
		c.Flags().String("source", "", "source id")
		c.Flags().String("endpoint", "", "endpoint id")
	}
}
