package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/aegis-triage/config"
	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/internal/triage"
	"github.com/jwalitptl/aegis-triage/internal/wellness"
	"github.com/jwalitptl/aegis-triage/pkg/auth"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "triagectl",
		Short:         "Run the triage and wellness engines locally and mint staff tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to config.yaml")

	root.AddCommand(newTriageCmd(), newScoreCmd(), newTokenCmd())
	return root
}

func newTriageCmd() *cobra.Command {
	var in model.TriageInput
	var lang string

	cmd := &cobra.Command{
		Use:   "triage [symptoms]",
		Short: "Evaluate a complaint with the deterministic rule engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.SymptomsText = args[0]
			in.Language = model.Language(lang)

			result, err := triage.NewEngine(nil).Evaluate(in)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	f := cmd.Flags()
	f.IntVar(&in.Age, "age", 30, "patient age in years")
	f.IntVar(&in.PainScore, "pain", 0, "pain score 0-10")
	f.StringVar(&in.Duration, "duration", "", "how long symptoms have lasted")
	f.StringVar(&in.Gender, "gender", "", "patient gender")
	f.BoolVar(&in.HasChestPain, "chest-pain", false, "patient reports chest pain")
	f.BoolVar(&in.HasBreathingIssue, "breathing", false, "patient reports difficulty breathing")
	f.BoolVar(&in.HasConfusion, "confusion", false, "patient is confused")
	f.StringVar(&lang, "lang", string(model.LanguageEnglish), "recommendation language")
	return cmd
}

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score [file]",
		Short: "Score a wellness questionnaire read from a JSON file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var in model.AssumptionInput
			if err := json.NewDecoder(r).Decode(&in); err != nil {
				return fmt.Errorf("failed to decode questionnaire: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), wellness.NewEngine().Score(in, time.Now()))
		},
	}
}

func newTokenCmd() *cobra.Command {
	var staffID, patientID, hospitalID, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a staff or patient token signed with the configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadConfig(path)
			if err != nil {
				return err
			}
			if cfg.Auth.Secret == "" {
				return fmt.Errorf("auth.secret is not set")
			}

			jwtSvc := auth.NewJWTService(cfg.Auth.Secret, cfg.Auth.Issuer, time.Duration(cfg.Auth.ExpiryHours)*time.Hour)
			var token string
			if patientID != "" {
				token, err = jwtSvc.GeneratePatientToken(patientID)
			} else {
				token, err = jwtSvc.GenerateToken(staffID, hospitalID, role)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&staffID, "staff", "", "staff id")
	f.StringVar(&patientID, "patient", "", "patient id, issues a token for that patient's own records")
	f.StringVar(&hospitalID, "hospital", "", "hospital id the token is scoped to")
	f.StringVar(&role, "role", "nurse", "staff role (admin sees every hospital)")
	cmd.MarkFlagsMutuallyExclusive("staff", "patient")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
