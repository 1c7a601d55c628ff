package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hookline/hookline/cli/pkg/output"
	"github.com/hookline/hookline/common/client"
	"github.com/hookline/hookline/common/config"
	"github.com/hookline/hookline/common/logging"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile string
	cfg     *config.CLIConfig
)

var rootCmd = &cobra.Command{
	Use:   "hline",
	Short: "hookline CLI",
	Long: `hline is the command-line interface for a hookline webhooks backend.

Sign in with an API key, pick the active project, create sources and inspect
or replay events and deliveries from your terminal.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		if !output.ValidFormat(format) {
			return fmt.Errorf("unknown output format %q (table, json, yaml)", format)
		}
		return nil
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output.Error("%v", err)
		return err
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.hookline/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "profile to use (default: current profile)")
	rootCmd.PersistentFlags().StringP("output", "o", output.FormatTable, "output format: table, json, yaml")
	rootCmd.PersistentFlags().Duration("timeout", client.DefaultTimeout, "API request timeout")
	rootCmd.PersistentFlags().Bool("debug", false, "log API requests to stderr")
}

func initConfig() {
	var err error
	cfg, err = config.LoadCLI(cfgFile)
	if err != nil {
		output.Warn("Could not load config: %v", err)
		cfg = config.DefaultCLI()
	}
}

// profileName resolves --profile, falling back to the current profile.
func profileName(cmd *cobra.Command) string {
	name, _ := cmd.Flags().GetString("profile")
	if name == "" {
		name = cfg.CurrentProfile
	}
	return name
}

// api bundles the gateways for the selected profile.
type api struct {
	profile       *config.CLIProfile
	sources       *client.SourcesService
	events        *client.EventsService
	subscriptions *client.SubscriptionsService
}

func newAPI(cmd *cobra.Command) (*api, error) {
	name := profileName(cmd)
	p, err := cfg.GetProfile(name)
	if err != nil {
		return nil, fmt.Errorf("not logged in, run 'hline login': %w", err)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	debug, _ := cmd.Flags().GetBool("debug")

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), level, "text")

	apiURL := p.APIURL
	if apiURL == "" {
		apiURL = cfg.GetAPIURL(name)
	}

	transport := client.NewClient(apiURL,
		client.WithTimeout(timeout),
		client.WithTokenSource(client.StaticToken(p.APIKey)),
		client.WithUserAgent("hline/"+version),
		client.WithLogger(logger),
	)
	groups := client.StaticGroup(p.GroupID)

	return &api{
		profile:       p,
		sources:       client.NewSourcesService(transport, groups),
		events:        client.NewEventsService(transport, groups),
		subscriptions: client.NewSubscriptionsService(transport, groups),
	}, nil
}

// printEnvelope writes the envelope's data in the requested format. For table
// output render is called with the decoded data; a nil render prints the
// envelope message only.
func printEnvelope(cmd *cobra.Command, env *client.Envelope, render func(data interface{})) error {
	format, _ := cmd.Flags().GetString("output")

	data, err := output.RawJSON(env.Data)
	if err != nil {
		return err
	}

	if handled, err := output.Print(format, data); handled || err != nil {
		return err
	}

	if env.Message != "" {
		output.Success("%s", env.Message)
	}
	if render != nil && data != nil {
		render(data)
	}
	return nil
}

// parseTime accepts RFC 3339 timestamps or plain dates.
func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC 3339 or YYYY-MM-DD", value)
}

// getString returns the first non-empty string found at any of the dotted
// paths in m.
func getString(m interface{}, paths ...string) string {
	for _, path := range paths {
		if s := lookup(m, path); s != "" {
			return s
		}
	}
	return ""
}

func lookup(v interface{}, path string) string {
	cur := v
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '.' {
			continue
		}
		m, ok := cur.(map[string]interface{})
		if !ok {
			return ""
		}
		cur = m[path[start:i]]
		start = i + 1
	}

	switch val := cur.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	}
	return ""
}

// pageContent returns data.content for paged listings, or data itself when
// it is already a list.
func pageContent(data interface{}) []interface{} {
	switch d := data.(type) {
	case []interface{}:
		return d
	case map[string]interface{}:
		if content, ok := d["content"].([]interface{}); ok {
			return content
		}
	}
	return nil
}

func printPagination(data interface{}) {
	total := getString(data, "pagination.total")
	if total == "" {
		return
	}
	output.Info("\nPage %s of %s (%s total)",
		getString(data, "pagination.page"),
		getString(data, "pagination.totalPage"),
		total)
}

func shortTime(value string) string {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return t.Format("2006-01-02 15:04:05")
}
