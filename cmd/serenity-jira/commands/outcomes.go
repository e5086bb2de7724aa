package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serenity-go/serenity-jira/internal/jira"
	"github.com/serenity-go/serenity-jira/internal/zephyr"
)

var outcomesCmd = &cobra.Command{
	Use:   "outcomes",
	Short: "Print manual test outcomes synthesized from Zephyr execution records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		adaptor := zephyr.NewAdaptor(jira.NewGateway(cfg), cfg)

		outcomes, err := adaptor.LoadOutcomes()
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(outcomes, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render outcomes: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outcomesCmd)
}
