package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	go_json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"runcoach/internal/analysis"
	"runcoach/internal/auth"
	"runcoach/internal/export"
	"runcoach/internal/fitfile"
	"runcoach/internal/server"
	"runcoach/internal/service"
	"runcoach/internal/store"
	"runcoach/internal/workout"
	"runcoach/internal/xslog"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the activity API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd, xslog.FormatJSON)
			if err != nil {
				return ignoreConfigCreated(err)
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			handler := server.NewRouter(server.NewHandler(a.service), a.logger)
			return server.Run(ctx, addr, handler, a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func analyzeCmd() *cobra.Command {
	var (
		workoutPath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <file.fit>",
		Short: "Grade a FIT file and check it against its planned workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd, "")
			if err != nil {
				return ignoreConfigCreated(err)
			}
			defer a.Close()

			var planned *analysis.PlannedWorkout
			if workoutPath != "" {
				w, err := workout.LoadFile(workoutPath)
				if err != nil {
					return err
				}
				planned = &w
			}

			detail, err := a.service.AnalyzeFile(ctx, args[0], planned)
			if err != nil {
				return err
			}

			if asJSON {
				enc := go_json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(detail)
			}
			return a.renderer.Activity(cmd.OutOrStdout(), detail)
		},
	}
	cmd.Flags().StringVar(&workoutPath, "workout", "", "planned workout JSON file (default: look up the scheduled workout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent activities in the FIT directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd, "")
			if err != nil {
				return ignoreConfigCreated(err)
			}
			defer a.Close()

			activities, err := a.service.ListActivities(ctx)
			if err != nil {
				return err
			}

			if asJSON {
				if activities == nil {
					activities = []service.ActivitySummary{}
				}
				enc := go_json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(activities)
			}
			return a.renderer.ActivityList(cmd.OutOrStdout(), activities)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")
	return cmd
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <file.fit>",
		Short: "Write a FIT file's samples to parquet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if out == "" {
				out = stem + ".parquet"
			}

			activity, err := fitfile.DecodeFile(path)
			if err != nil {
				return err
			}

			if err := export.WriteFile(out, service.ActivityGarminID(stem), *activity); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d samples to %s\n", len(activity.Samples), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <stem>.parquet)")
	return cmd
}

func authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to the workout calendar",
		Long:  "Opens the platform's consent page and stores the token locally.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return ignoreConfigCreated(err)
			}
			if !cfg.Connect.Enabled() {
				return errors.New("connect.client_id is not configured")
			}

			db, err := store.Open()
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			result, err := auth.Authenticate(cmd.Context(), oauthConfig(cfg), cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			if err := db.SaveConnectToken(&store.ConnectToken{
				Platform:     cfg.Connect.BaseURL,
				AccountID:    result.AccountID,
				AccessToken:  result.Token.AccessToken,
				RefreshToken: result.Token.RefreshToken,
				TokenType:    result.Token.TokenType,
				ExpiresAt:    result.Token.Expiry,
			}); err != nil {
				return fmt.Errorf("saving token: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Authentication successful!")
			fmt.Fprintf(out, "Token expires: %s\n", result.Token.Expiry.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func ignoreConfigCreated(err error) error {
	if errors.Is(err, errConfigCreated) {
		return nil
	}
	return err
}
