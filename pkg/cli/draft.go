package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"intakeform/pkg/autosave"
	"intakeform/pkg/config"
	"intakeform/pkg/form"
	"intakeform/pkg/state"
	"intakeform/pkg/storage"
)

func newDraftCommand(root *rootOptions) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "draft <session-id>",
		Short: "Show or delete the saved draft of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(root.settingsFile)
			if err != nil {
				return err
			}
			if settings.DatabaseDSN == "" {
				return fmt.Errorf("DATABASE_DSN is required to inspect drafts")
			}
			db, err := storage.OpenPostgres(settings.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			key := state.DraftKey(args[0])
			if remove {
				if err := db.Delete(ctx, key); err != nil {
					return fmt.Errorf("failed to delete draft: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Draft %s deleted.\n", key)
				return nil
			}

			rec, ok := autosave.Load(ctx, db, key, nil)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", gray("No saved draft for "+args[0]))
				return nil
			}
			describeDraft(cmd, key, rec, time.Now())
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the draft instead of showing it")
	return cmd
}

func describeDraft(cmd *cobra.Command, key string, rec autosave.Record, now time.Time) {
	out := cmd.OutOrStdout()
	saved, _ := rec.SavedAt()
	filled := 0
	for _, f := range form.Fields() {
		if rec.Data.Get(f.ID).Joined() != "" {
			filled++
		}
	}
	fmt.Fprintf(out, "%s %s\n", bold("Draft"), key)
	fmt.Fprintf(out, "  saved:  %s (%s)\n", rec.Timestamp, autosave.Humanize(saved, now))
	fmt.Fprintf(out, "  filled: %d of %d fields\n", filled, len(form.Fields()))
}
