package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EchoCog/atomspace/core/storage"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage timestamped backups of --snapshot",
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the current snapshot file to a timestamped backup",
	RunE:  runSnapshotBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore BACKUP_PATH",
	Short: "Overwrite the live snapshot with a previous backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotRestore,
}

func init() {
	snapshotCmd.AddCommand(backupCmd, restoreCmd)
}

func runSnapshotBackup(cmd *cobra.Command, args []string) error {
	writer := storage.NewSnapshotWriter(snapshotPath)
	backupPath, err := writer.CreateBackup()
	if err != nil {
		return fmt.Errorf("snapshot backup: %w", err)
	}
	fmt.Printf("wrote backup to %s\n", backupPath)
	return nil
}

func runSnapshotRestore(cmd *cobra.Command, args []string) error {
	writer := storage.NewSnapshotWriter(snapshotPath)
	if err := writer.RestoreFromBackup(args[0]); err != nil {
		return fmt.Errorf("snapshot restore: %w", err)
	}
	fmt.Printf("restored %s from %s\n", snapshotPath, args[0])
	return nil
}
