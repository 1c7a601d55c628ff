package cmd

import (
	"fmt"

	"github.com/hookline/hookline/cli/pkg/output"
	"github.com/hookline/hookline/common/client"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:     "events",
	Aliases: []string{"event"},
	Short:   "Inspect and replay events",
}

var eventsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List events in the active project",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := eventFilterFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.events.ListEvents(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}

		return printEnvelope(cmd, env, func(data interface{}) {
			events := pageContent(data)
			if len(events) == 0 {
				output.Info("No events found")
				return
			}

			table := output.NewTable([]string{"ID", "Event Type", "App", "Source", "Created"})
			for _, e := range events {
				table.AddRow([]string{
					getString(e, "uid", "id"),
					getString(e, "event_type"),
					getString(e, "app_metadata.title", "app_id"),
					getString(e, "source_metadata.name", "source_id"),
					shortTime(getString(e, "created_at")),
				})
			}
			table.Render()
			printPagination(data)
		})
	},
}

var eventsGetCmd = &cobra.Command{
	Use:   "get <event-id>",
	Short: "Show one event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.events.GetEvent(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get event: %w", err)
		}

		return printEnvelope(cmd, env, func(data interface{}) {
			output.Info("ID:         %s", getString(data, "uid", "id"))
			output.Info("Event type: %s", getString(data, "event_type"))
			output.Info("App:        %s", getString(data, "app_metadata.title", "app_id"))
			output.Info("Created:    %s", shortTime(getString(data, "created_at")))
		})
	},
}

var eventsReplayCmd = &cobra.Command{
	Use:   "replay <event-id>",
	Short: "Replay an event to its endpoints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.events.ReplayEvent(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to replay event: %w", err)
		}
		return printEnvelope(cmd, env, nil)
	},
}

func eventFilterFromFlags(cmd *cobra.Command) (client.EventFilter, error) {
	var filter client.EventFilter
	filter.AppID, _ = cmd.Flags().GetString("app")
	filter.SourceID, _ = cmd.Flags().GetString("source")
	filter.Sort, _ = cmd.Flags().GetString("sort")
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

func addPagingFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("per-page", 20, "results per page")
	cmd.Flags().String("start", "", "only items created at or after this time")
	cmd.Flags().String("end", "", "only items created before this time")
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsGetCmd)
	eventsCmd.AddCommand(eventsReplayCmd)

	eventsListCmd.Flags().String("app", "", "filter by app id")
	eventsListCmd.Flags().String("source", "", "filter by source id")
	eventsListCmd.Flags().String("sort", "", "sort order: AESC or DESC")
	addPagingFlags(eventsListCmd)
}
