package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serenity-go/serenity-jira/internal/jira"
	"github.com/serenity-go/serenity-jira/internal/requirements"
)

var requirementsCmd = &cobra.Command{
	Use:   "requirements",
	Short: "Print the requirements hierarchy derived from the project's epics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		provider := requirements.NewProvider(jira.NewGateway(cfg), cfg)

		out, err := json.MarshalIndent(provider.GetRequirements(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render requirements: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(requirementsCmd)
}
