package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serenity-go/serenity-jira/internal/jira"
	"github.com/serenity-go/serenity-jira/internal/models"
	"github.com/serenity-go/serenity-jira/internal/requirements"
)

var tagsCmd = &cobra.Command{
	Use:   "tags ISSUE_KEY [ISSUE_KEY...]",
	Short: "Resolve the full tag chain (issue plus ancestor requirements) for issue keys",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		provider := requirements.NewProvider(jira.NewGateway(cfg), cfg)

		outcome := &models.TestOutcome{IssueKeys: args}
		out, err := json.MarshalIndent(provider.GetTagsFor(outcome), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render tags: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}
