package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serenity-go/serenity-jira/internal/config"
)

var (
	flagJiraURL string
	flagProject string

	rootCmd = &cobra.Command{
		Use:   "serenity-jira",
		Short: "Read requirements and manual test results from a Jira server",
		Long: `serenity-jira projects a Jira project into reporting-tool models:
a requirements hierarchy built from epics and their linked issues, tag
resolution for test outcomes, and manual test outcomes synthesized from
the Zephyr test-management extension.

Connection settings come from the environment (JIRA_URL, JIRA_USERNAME,
JIRA_API_TOKEN, JIRA_PROJECT) or a .env file, and can be overridden with
flags.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagJiraURL, "url", "", "Jira base URL (overrides JIRA_URL)")
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "Jira project key (overrides JIRA_PROJECT)")
}

// loadConfig builds the configuration from the environment and applies any
// flag overrides.
func loadConfig() *config.Config {
	cfg := config.NewConfig()
	if flagJiraURL != "" {
		cfg.JiraBaseURL = flagJiraURL
	}
	if flagProject != "" {
		cfg.ProjectKey = flagProject
	}
	return cfg
}
