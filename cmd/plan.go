package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/biotrack/biotrack-cli/internal/job"
	"github.com/biotrack/biotrack-cli/internal/store"
)

var planLanguage string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate and track diet plans",
}

var planGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a diet plan from stored results and wait for it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("plan"); err != nil {
			return err
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runner := newRunner(st)

		lang := planLanguage
		if lang == "" {
			lang = cfg.Plan.Language
		}

		jobID, err := runner.Start(ctx, profileFromConfig(), lang)
		if err != nil {
			return err
		}

		tracker := job.NewTracker(
			store.NewJobSlot(st, cfg.User.ID),
			runner,
			newNotifier(),
			time.Duration(cfg.Poll.IntervalSecs)*time.Second,
		)
		if err := tracker.Submit(ctx, jobID); err != nil {
			return err
		}

		zap.L().Info("waiting for plan generation", zap.String("job_id", jobID))
		if err := tracker.Run(ctx); err != nil {
			return err
		}

		return printTrackerOutcome(tracker)
	},
}

var planStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the tracked generation job once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("plan"); err != nil {
			return err
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		slot := store.NewJobSlot(st, cfg.User.ID)
		jobID, err := slot.Load(ctx)
		if err != nil {
			return err
		}
		if jobID == "" {
			fmt.Println("no tracked generation job")
			return nil
		}

		status, err := newRunner(st).Status(ctx, jobID)
		if err != nil {
			return err
		}

		fmt.Printf("job %s: %s\n", jobID, status.Status)
		if status.Error != "" {
			fmt.Printf("error: %s\n", status.Error)
		}
		if len(status.Plan) > 0 {
			return printJSON(status.Plan)
		}
		return nil
	},
}

var planWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the tracked generation job until it lands",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("plan"); err != nil {
			return err
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		tracker := job.NewTracker(
			store.NewJobSlot(st, cfg.User.ID),
			newRunner(st),
			newNotifier(),
			time.Duration(cfg.Poll.IntervalSecs)*time.Second,
		)

		tracked, err := tracker.Resume(ctx)
		if err != nil {
			return err
		}
		if !tracked {
			fmt.Println("no tracked generation job")
			return nil
		}

		if err := tracker.Run(ctx); err != nil {
			return err
		}
		return printTrackerOutcome(tracker)
	},
}

func printTrackerOutcome(t *job.Tracker) error {
	if plan := t.Plan(); len(plan) > 0 {
		defer t.ClearCompleted()
		return printJSON(plan)
	}
	if msg := t.Err(); msg != "" {
		return fmt.Errorf("plan generation failed: %s", msg)
	}
	return nil
}

func printJSON(raw json.RawMessage) error {
	var pretty any
	if err := json.Unmarshal(raw, &pretty); err != nil {
		// Not valid JSON; print as-is.
		fmt.Println(string(raw))
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}

func init() {
	planGenerateCmd.Flags().StringVar(&planLanguage, "language", "", "plan language, en or ar (default from config)")
	planCmd.AddCommand(planGenerateCmd)
	planCmd.AddCommand(planStatusCmd)
	planCmd.AddCommand(planWatchCmd)
	rootCmd.AddCommand(planCmd)
}
