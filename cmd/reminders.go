package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/biotrack/biotrack-cli/internal/catalog"
)

var remindersJSON bool

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "List scheduled re-test reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("local"); err != nil {
			return err
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		reminders, err := st.ListReminders(ctx, cfg.User.ID)
		if err != nil {
			return err
		}

		if remindersJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(reminders)
		}

		now := time.Now().UTC()
		for _, r := range reminders {
			name := r.MetricID
			if m, ok := catalog.Get(r.MetricID); ok {
				name = m.NameEN
			}
			marker := ""
			switch {
			case r.Sent:
				marker = "sent"
			case r.Due(now):
				marker = "DUE"
			}
			fmt.Printf("%s  %-24s %-4s %s\n",
				r.DueDate.Format(time.DateOnly), name, marker, r.ID)
		}
		fmt.Printf("%d reminder(s)\n", len(reminders))
		return nil
	},
}

var remindersDoneCmd = &cobra.Command{
	Use:   "done <reminder-id>",
	Short: "Mark a reminder as handled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("local"); err != nil {
			return err
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.MarkReminderSent(ctx, args[0], true); err != nil {
			return err
		}
		fmt.Println("reminder marked as handled")
		return nil
	},
}

var remindersRemoveCmd = &cobra.Command{
	Use:   "rm <reminder-id>",
	Short: "Delete a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("local"); err != nil {
			return err
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteReminder(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("reminder deleted")
		return nil
	},
}

func init() {
	remindersCmd.Flags().BoolVar(&remindersJSON, "json", false, "output JSON")
	remindersCmd.AddCommand(remindersDoneCmd, remindersRemoveCmd)
	rootCmd.AddCommand(remindersCmd)
}
