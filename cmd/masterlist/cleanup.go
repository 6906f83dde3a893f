package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/greyfable/masterlist/internal/audit"
	"github.com/greyfable/masterlist/internal/config"
	"github.com/greyfable/masterlist/internal/db"
	"github.com/greyfable/masterlist/internal/repository"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Clean up old data (expired sessions, old activity entries)",
	RunE:  runCleanup,
}

var cleanupActivityDays int

func init() {
	cleanupCmd.Flags().IntVar(&cleanupActivityDays, "activity-days", 0, "Delete activity entries older than N days (0 keeps everything)")
	cleanupCmd.Flags().StringVarP(&configFile, "config", "c", "/etc/masterlist/config.yaml", "Path to configuration file")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	sessions := repository.NewSessionRepository(database.DB)
	removed, err := sessions.DeleteExpired()
	if err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	fmt.Printf("Expired sessions removed: %d\n", removed)

	if cleanupActivityDays > 0 {
		// The activity database takes an exclusive file lock; stop the
		// server before pruning.
		store, err := audit.NewStore(cfg.Activity.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		cutoff := time.Now().AddDate(0, 0, -cleanupActivityDays)
		pruned, err := store.Prune(cutoff)
		if err != nil {
			return err
		}
		fmt.Printf("Activity entries older than %d days removed: %d\n", cleanupActivityDays, pruned)
	}

	fmt.Println("Cleanup completed")
	return nil
}
