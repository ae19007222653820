package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"runcoach/internal/auth"
	"runcoach/internal/config"
	"runcoach/internal/connect"
	"runcoach/internal/report"
	"runcoach/internal/service"
	"runcoach/internal/store"
	"runcoach/internal/workout"
	"runcoach/internal/xslog"
)

// app bundles the dependencies shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *store.DB
	service  *service.ActivityService
	renderer *report.Renderer
}

// errConfigCreated stops a command after writing the example config.
var errConfigCreated = errors.New("example config created")

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Fprintf(os.Stderr, "No config file found. Created an example at:\n  %s/config.json\n\n", configDir)
		fmt.Fprintln(os.Stderr, "Set fit_files_path, then run the command again.")
		return nil, errConfigCreated
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		return nil, fmt.Errorf("invalid config at %s/config.json: %w", configDir, err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config, format string) (*slog.Logger, error) {
	levelName := cfg.Log.Level
	if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
		levelName = flag
	}
	level, err := xslog.Parse(levelName)
	if err != nil {
		return nil, err
	}
	return xslog.NewLogger(os.Stderr, level, format), nil
}

// openApp loads config, opens the database and wires the activity service.
// The returned context carries the logger.
func openApp(cmd *cobra.Command, logFormat string) (context.Context, *app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if logFormat == "" {
		logFormat = cfg.Log.Format
	}
	logger, err := newLogger(cmd, cfg, logFormat)
	if err != nil {
		return nil, nil, err
	}
	ctx := xslog.WithLogger(cmd.Context(), logger)

	db, err := store.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	source := workoutSource(ctx, cfg, db)

	return ctx, &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		service:  service.NewActivityService(cfg.FitFilesPath, db, source, cfg.Analysis.Options()),
		renderer: report.NewRenderer(report.NewUnits(cfg.Display)),
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}

// workoutSource returns the calendar client when the platform is configured
// and authorized, and the local workout directory otherwise.
func workoutSource(ctx context.Context, cfg *config.Config, db *store.DB) workout.Source {
	logger := xslog.FromContext(ctx)
	files := workout.NewFileSource(cfg.WorkoutsPath)

	if !cfg.Connect.Enabled() {
		return files
	}

	platform := cfg.Connect.BaseURL
	stored, err := db.ConnectToken(platform)
	if errors.Is(err, store.ErrNoToken) {
		logger.WarnContext(ctx, "connect platform not authorized, run `runcoach auth`; using local workouts",
			slog.String("platform", store.PlatformKey(platform)))
		return files
	}
	if err != nil {
		logger.ErrorContext(ctx, "reading stored token; using local workouts", xslog.Error(err))
		return files
	}

	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       stored.ExpiresAt,
	}
	tokenSource := auth.NewTokenSource(oauthConfig(cfg), token, nil, func(t *oauth2.Token) error {
		return db.RefreshConnectToken(platform, t.AccessToken, t.RefreshToken, t.Expiry)
	})

	return connect.NewClient(cfg.Connect.BaseURL, tokenSource, nil)
}

func oauthConfig(cfg *config.Config) *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Connect.ClientID,
		ClientSecret: cfg.Connect.ClientSecret,
		AuthURL:      cfg.Connect.AuthURL,
		TokenURL:     cfg.Connect.TokenURL,
	})
}
