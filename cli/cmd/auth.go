package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hookline/hookline/cli/pkg/output"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save API credentials",
	Long: `Save an API key and the active project to a profile.

The key is sent as a bearer token on every request; the project scopes every
request through the groupId query parameter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey, _ := cmd.Flags().GetString("api-key")
		groupID, _ := cmd.Flags().GetString("group")
		apiURL, _ := cmd.Flags().GetString("api-url")

		if apiKey == "" {
			return errors.New("api key is required")
		}
		if groupID == "" {
			return errors.New("project is required")
		}

		name, _ := cmd.Flags().GetString("profile")
		if name == "" {
			name = "default"
		}
		if apiURL == "" {
			apiURL = cfg.GetAPIURL(name)
		}

		if err := cfg.SaveProfile(name, strings.TrimRight(apiURL, "/"), apiKey, groupID); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		output.Success("Logged in to %s with project %s", apiURL, groupID)
		output.Info("Profile '%s' saved to %s", name, cfg.Path())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := profileName(cmd)
		if err := cfg.RemoveProfile(name); err != nil {
			return err
		}

		output.Success("Logged out from profile '%s'", name)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := profileName(cmd)
		p, err := cfg.GetProfile(name)
		if err != nil {
			return fmt.Errorf("not logged in: %w", err)
		}

		info := map[string]string{
			"profile":  name,
			"api_url":  cfg.GetAPIURL(name),
			"group_id": p.GroupID,
			"api_key":  maskKey(p.APIKey),
		}

		format, _ := cmd.Flags().GetString("output")
		if handled, err := output.Print(format, info); handled || err != nil {
			return err
		}

		output.Info("Profile: %s", info["profile"])
		output.Info("API URL: %s", info["api_url"])
		output.Info("Project: %s", info["group_id"])
		output.Info("API key: %s", info["api_key"])
		return nil
	},
}

// maskKey keeps the last four characters of a key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().String("api-url", "", "API base URL (default from config/env)")
	loginCmd.Flags().String("api-key", "", "API key")
	loginCmd.Flags().StringP("group", "g", "", "active project (group) id")
	_ = loginCmd.MarkFlagRequired("api-key")
	_ = loginCmd.MarkFlagRequired("group")
}
