package cmd

import (
	"fmt"

	"github.com/procwing/procwing/models"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <process>",
	Short: "Delete a process permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		proc, err := resolveProcess(s, args[0])
		if err != nil {
			return err
		}
		if err := s.DeleteProcess(proc.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted %q (%s)\n", proc.Name, shortID(proc.ID))
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <process>",
	Short: "Archive a process, hiding it from active work",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		proc, err := resolveProcess(s, args[0])
		if err != nil {
			return err
		}
		archived := models.ProcessArchived
		updated, err := s.UpdateProcess(proc.ID, models.ProcessPatch{Status: &archived})
		if err != nil {
			return err
		}
		fmt.Printf("Archived %q [%s]\n", updated.Name, updated.Status)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the procwing version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("procwing " + version)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd, archiveCmd, versionCmd)
}
