package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup <destination>",
	Short: "Copy the current partition's store file to a destination path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := s.Backup(args[0]); err != nil {
			return err
		}
		fmt.Printf("Backed up partition %q to %s\n", GetConfig().Agent, args[0])
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <source>",
	Short: "Replace the current partition's store file with a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := s.Restore(args[0]); err != nil {
			return err
		}
		fmt.Printf("Restored partition %q from %s\n", GetConfig().Agent, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd, restoreCmd)
}
