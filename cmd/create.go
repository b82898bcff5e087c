package cmd

import (
	"fmt"
	"time"

	"github.com/procwing/procwing/models"
	"github.com/procwing/procwing/schedule"
	"github.com/spf13/cobra"
)

var (
	createDescription string
	createTags        []string
	createSessionKey  string
	createSchedule    string
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new process",
	Long: `Create a new draft process in the current agent partition. An optional
schedule is parsed from natural language, e.g. --schedule "every monday at 9am".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		proc := models.NewProcessDescriptor(GetConfig().Agent, args[0], time.Now().UTC())
		proc.Description = createDescription
		proc.Tags = createTags
		proc.CreatedFromSessionKey = createSessionKey

		if createSchedule != "" {
			res := schedule.Parse(createSchedule, time.Now())
			if res.Schedule == nil {
				return fmt.Errorf("could not understand schedule %q: %s", createSchedule, res.Err)
			}
			mode := models.ModeRecurring
			if res.Schedule.Kind == models.ScheduleAt {
				mode = models.ModeOnce
			}
			proc.Schedule = &models.ProcessSchedule{Mode: mode, Cron: res.Schedule}
			if verbose {
				fmt.Printf("Schedule understood as: %s (confidence %.2f)\n", res.Interpretation, res.Confidence)
			}
		}

		created, err := s.CreateProcess(proc)
		if err != nil {
			return err
		}
		fmt.Printf("Created process %s (%s)\n", created.Name, created.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "process description")
	createCmd.Flags().StringSliceVarP(&createTags, "tag", "t", nil, "tags (repeatable)")
	createCmd.Flags().StringVar(&createSessionKey, "session", "", "session key this process was created from")
	createCmd.Flags().StringVar(&createSchedule, "schedule", "", "natural-language schedule")
}
