package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/procwing/procwing/schedule"
	"github.com/spf13/cobra"
)

var parseScheduleCmd = &cobra.Command{
	Use:   "parse-schedule <text>",
	Short: "Parse a natural-language schedule and print the result",
	Long: `Parse a scheduling phrase such as "every monday at 9am" or "in 2 hours"
and print the structured schedule, confidence and interpretation as JSON.
A phrase that cannot be understood is not an error; the result carries
confidence 0 and an explanation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := schedule.Parse(args[0], time.Now())
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseScheduleCmd)
}
