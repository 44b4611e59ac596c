package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/emotion-feedback/classifier"
	cfg "github.com/maastricht-university/emotion-feedback/config"
	"github.com/maastricht-university/emotion-feedback/features"
	"github.com/maastricht-university/emotion-feedback/landmarks"
)

func newClassifyCmd(g *globals) *cobra.Command {
	var (
		v      features.Vector
		angry  float64
		points string
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify one feature vector or landmark set",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := cfg.NewLoader(g.configPath).Load()
			if err != nil {
				return err
			}

			if points != "" {
				b, err := os.ReadFile(points)
				if err != nil {
					return err
				}
				var set landmarks.Set
				if err := json.Unmarshal(b, &set); err != nil {
					return fmt.Errorf("%s: %w", points, err)
				}
				if v, err = features.Extract(set); err != nil {
					return err
				}
			}

			aux := classifier.NoAux
			if cmd.Flags().Changed("angry") {
				aux = classifier.Aux{Available: true, Angry: angry}
			}
			l := classifier.Classify(conf.Thresholds(), v, aux)

			out := struct {
				Emotion  classifier.Label `json:"emotion"`
				Features features.Vector  `json:"features"`
			}{l, v}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().Float64Var(&v.EyeOpen, "eye-open", 0, "eye openness")
	cmd.Flags().Float64Var(&v.BrowLift, "brow-lift", 0, "brow lift")
	cmd.Flags().Float64Var(&v.MouthOpen, "mouth-open", 0, "mouth openness")
	cmd.Flags().Float64Var(&v.MouthSlope, "mouth-slope", 0, "mouth corner slope")
	cmd.Flags().Float64Var(&angry, "angry", 0, "auxiliary classifier angry probability")
	cmd.Flags().StringVar(&points, "points", "", "JSON array of landmark points; overrides the feature flags")
	return cmd
}

func newConfigCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := cfg.NewLoader(g.configPath).Load()
			if err != nil {
				return err
			}
			return cfg.Dump(cmd.OutOrStdout(), conf)
		},
	}
}
