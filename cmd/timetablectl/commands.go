package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

var outputFormat string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "timetablectl",
		Short:         "Offline tools for school timetables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&outputFormat, "output", "o", "yaml", "output format: yaml or json")
	root.AddCommand(newValidateCommand(), newReplacementsCommand(), newTokenCommand(), newMigrateCommand())
	return root
}

func newValidateCommand() *cobra.Command {
	var file string
	var maxViolations int
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every lesson of a fixture against the constraints",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFixture(file)
			if err != nil {
				return err
			}
			checker := timetable.NewChecker(f.catalog(), f.Config)
			report, err := timetable.ValidateSet(checker, f.Lessons, maxViolations)
			if err != nil {
				return err
			}
			if err := render(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Valid() {
				return fmt.Errorf("%d violation(s) found", len(report.Violations))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file (yaml)")
	cmd.Flags().IntVar(&maxViolations, "max-violations", timetable.DefaultMaxViolations, "stop after this many violations")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newReplacementsCommand() *cobra.Command {
	var file, teacherID, date string
	cmd := &cobra.Command{
		Use:   "replacements",
		Short: "List ranked replacement solutions for an absent teacher",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFixture(file)
			if err != nil {
				return err
			}
			req, err := f.absence(teacherID, date)
			if err != nil {
				return err
			}
			finder, err := timetable.NewFinder(f.catalog(), f.Config, f.Lessons)
			if err != nil {
				return err
			}
			result, err := finder.Find(cmd.Context(), req)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file (yaml)")
	cmd.Flags().StringVar(&teacherID, "teacher", "", "absent teacher id, overrides the fixture")
	cmd.Flags().StringVar(&date, "date", "", "absence date YYYY-MM-DD, overrides the fixture")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newTokenCommand() *cobra.Command {
	var userID, role, name string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development access token with the configured JWT secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Env == config.EnvProduction {
				return fmt.Errorf("refusing to sign tokens with ENV=%s", cfg.Env)
			}
			tokens := service.NewTokenService(service.TokenConfig{
				Secret:   cfg.JWT.Secret,
				Issuer:   cfg.JWT.Issuer,
				Audience: cfg.JWT.Audience,
				TTL:      cfg.JWT.Expiration,
			})
			signed, expiresAt, err := tokens.Issue(userID, models.UserRole(role), name)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), map[string]string{
				"accessToken": signed,
				"expiresAt":   expiresAt.Format("2006-01-02T15:04:05Z07:00"),
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "dev-user", "user id placed in the token")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "role placed in the token")
	cmd.Flags().StringVar(&name, "name", "Developer", "full name placed in the token")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending timetable schema migrations to the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logr, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer logr.Sync() //nolint:errcheck

			db, err := database.NewPostgres(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := database.Migrate(db.DB, logr)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), map[string]uint{"version": version})
		},
	}
}

// render writes v in the selected format. YAML output is derived from the JSON encoding so both
// formats carry the same field names and order.
func render(w io.Writer, v interface{}) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	switch outputFormat {
	case "json":
		_, err = fmt.Fprintln(w, string(payload))
		return err
	case "yaml", "":
		var node yaml.Node
		if err := yaml.Unmarshal(payload, &node); err != nil {
			return err
		}
		blockStyle(&node)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}
