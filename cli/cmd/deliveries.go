package cmd

import (
	"fmt"

	"github.com/hookline/hookline/cli/pkg/output"
	"github.com/hookline/hookline/common/client"
	"github.com/spf13/cobra"
)

var deliveriesCmd = &cobra.Command{
	Use:     "deliveries",
	Aliases: []string{"delivery"},
	Short:   "Inspect and resend event deliveries",
}

var deliveriesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List event deliveries in the active project",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := deliveryFilterFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.events.ListEventDeliveries(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list deliveries: %w", err)
		}

		return printEnvelope(cmd, env, func(data interface{}) {
			deliveries := pageContent(data)
			if len(deliveries) == 0 {
				output.Info("No deliveries found")
				return
			}

			table := output.NewTable([]string{"ID", "Status", "Event", "Endpoint", "Attempts", "Created"})
			for _, d := range deliveries {
				table.AddRow([]string{
					getString(d, "uid", "id"),
					getString(d, "status"),
					getString(d, "event_metadata.name", "event_id"),
					getString(d, "endpoint_metadata.target_url", "endpoint_id"),
					getString(d, "metadata.num_trials"),
					shortTime(getString(d, "created_at")),
				})
			}
			table.Render()
			printPagination(data)
		})
	},
}

var deliveriesGetCmd = &cobra.Command{
	Use:   "get <delivery-id>",
	Short: "Show one delivery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.events.GetEventDelivery(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get delivery: %w", err)
		}

		return printEnvelope(cmd, env, func(data interface{}) {
			output.Info("ID:       %s", getString(data, "uid", "id"))
			output.Info("Status:   %s", getString(data, "status"))
			output.Info("Event:    %s", getString(data, "event_metadata.uid", "event_id"))
			output.Info("Endpoint: %s", getString(data, "endpoint_metadata.target_url", "endpoint_id"))
			output.Info("Attempts: %s", getString(data, "metadata.num_trials"))
		})
	},
}

var deliveriesResendCmd = &cobra.Command{
	Use:   "resend <delivery-id>",
	Short: "Resend a failed delivery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.events.ResendEventDelivery(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to resend delivery: %w", err)
		}
		return printEnvelope(cmd, env, nil)
	},
}

var deliveriesBatchRetryCmd = &cobra.Command{
	Use:   "batch-retry",
	Short: "Retry every delivery matching the filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := deliveryFilterFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.events.BatchRetryEventDeliveries(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to retry deliveries: %w", err)
		}
		return printEnvelope(cmd, env, nil)
	},
}

var deliveriesCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count the deliveries a batch retry with the same filter would retry",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := deliveryFilterFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.events.CountBatchRetryEventDeliveries(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to count deliveries: %w", err)
		}

		return printEnvelope(cmd, env, func(data interface{}) {
			output.Info("%s deliveries match", getString(data, "num"))
		})
	},
}

var deliveriesForceResendCmd = &cobra.Command{
	Use:   "force-resend <delivery-id>...",
	Short: "Resend deliveries regardless of their status",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.events.ForceResendEventDeliveries(cmd.Context(), args)
		if err != nil {
			return fmt.Errorf("failed to force resend deliveries: %w", err)
		}
		return printEnvelope(cmd, env, nil)
	},
}

func deliveryFilterFromFlags(cmd *cobra.Command) (client.DeliveryFilter, error) {
	var filter client.DeliveryFilter
	filter.AppID, _ = cmd.Flags().GetString("app")
	filter.EventID, _ = cmd.Flags().GetString("event")
	filter.Status, _ = cmd.Flags().GetStringSlice("status")
	filter.Page, _ = cmd.Flags().GetInt("page")
	filter.PerPage, _ = cmd.Flags().GetInt("per-page")

	var err error
	start, _ := cmd.Flags().GetString("start")
	if filter.StartDate, err = parseTime(start); err != nil {
		return filter, err
	}
	end, _ := cmd.Flags().GetString("end")
	if filter.EndDate, err = parseTime(end); err != nil {
		return filter, err
	}
	return filter, nil
}

func init() {
	rootCmd.AddCommand(deliveriesCmd)
	deliveriesCmd.AddCommand(deliveriesListCmd)
	deliveriesCmd.AddCommand(deliveriesGetCmd)
	deliveriesCmd.AddCommand(deliveriesResendCmd)
	deliveriesCmd.AddCommand(deliveriesBatchRetryCmd)
	deliveriesCmd.AddCommand(deliveriesCountCmd)
	deliveriesCmd.AddCommand(deliveriesForceResendCmd)

	for _, c := range []*cobra.Command{deliveriesListCmd, deliveriesBatchRetryCmd, deliveriesCountCmd} {
		c.Flags().String("app", "", "filter by app id")
		c.Flags().String("event", "", "filter by event id")
		c.Flags().StringSlice("status", nil, "filter by status: Scheduled, Processing, Discarded, Failure, Success, Retry")
		addPagingFlags(c)
	}
}
