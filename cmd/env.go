package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"

	"github.com/biotrack/biotrack-cli/internal/extract"
	"github.com/biotrack/biotrack-cli/internal/model"
	"github.com/biotrack/biotrack-cli/internal/notify"
	"github.com/biotrack/biotrack-cli/internal/plan"
	"github.com/biotrack/biotrack-cli/internal/store"
	anthropicpkg "github.com/biotrack/biotrack-cli/pkg/anthropic"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "biotrack.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initMigratedStore opens the configured store and applies migrations.
// Callers should defer Close.
func initMigratedStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func newAnalyzer() *extract.Analyzer {
	client := anthropicpkg.NewClient(cfg.Anthropic.Key)
	return extract.NewAnalyzer(client, extract.Opts{
		Model:          cfg.Anthropic.ExtractModel,
		RequestsPerMin: cfg.Anthropic.RequestsPerMinute,
	})
}

func newRunner(st store.Store) *plan.Runner {
	client := anthropicpkg.NewClient(cfg.Anthropic.Key)
	gen := plan.NewGenerator(client, cfg.Anthropic.PlanModel)
	return plan.NewRunner(st, gen, time.Duration(cfg.Plan.TimeoutSecs)*time.Second)
}

func profileFromConfig() model.Profile {
	return model.Profile{
		UserID:         cfg.User.ID,
		Weight:         cfg.User.Weight,
		Height:         cfg.User.Height,
		Age:            cfg.User.Age,
		Gender:         cfg.User.Gender,
		FitnessGoal:    cfg.User.Goal,
		ActivityLevel:  cfg.User.ActivityLevel,
		MealPreference: cfg.User.Preference,
		Allergies:      cfg.User.Allergies,
	}
}

// newNotifier builds the notification fan-out: a stdout toast always, plus
// the desktop channel when configured and notify-send is on PATH.
func newNotifier() notify.Notifier {
	tag := language.Make(cfg.Notify.Language)

	chain := notify.Multi{
		notify.NewToast(tag, func(title, body string) {
			fmt.Printf("%s: %s\n", title, body)
		}),
	}
	if cfg.Notify.Desktop {
		if d := notify.NewDesktop(tag); d.Enabled() {
			chain = append(chain, d)
		}
	}
	return chain
}
