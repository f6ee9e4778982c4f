// Command causemap runs causal-structure discovery from the terminal.
//
// Subcommands:
//
//	discover  read observations (xlsx/csv), run discovery, write graph JSON + report
//	validate  check a graph JSON snapshot for cycles and ordering violations
//	priors    print the built-in priors catalogue as YAML
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"causemap/adapters/excel"
	"causemap/adapters/report"
	"causemap/domain/causal"
	"causemap/domain/priors"
	"causemap/engine"
	"causemap/internal"
	"causemap/internal/config"
)

func main() {
	// .env is optional; env vars win either way.
	_ = godotenv.Load()
	cfg := config.Load()
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))

	rootCmd := &cobra.Command{
		Use:   "causemap",
		Short: "Causal-structure discovery over mental-health observation diaries",
	}
	rootCmd.AddCommand(discoverCmd(cfg, logger))
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(priorsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func discoverCmd(cfg *config.Config, logger *internal.Logger) *cobra.Command {
	var observationsPath, priorsPath, outPath, reportPath string

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run the discovery pipeline over an observation export",
		RunE: func(cmd *cobra.Command, args []string) error {
			if observationsPath == "" {
				return fmt.Errorf("an observations file is required (--observations or CAUSEMAP_OBSERVATIONS)")
			}

			observations, keys, err := excel.NewObservationReader(observationsPath).Read()
			if err != nil {
				return err
			}
			logger.Info("loaded %d observations of %d variables", len(observations), len(keys))

			catalogue := priors.Default()
			if priorsPath != "" {
				catalogue, err = priors.Load(priorsPath)
				if err != nil {
					return err
				}
			}

			engineCfg := engine.DefaultConfig()
			engineCfg.Catalogue = catalogue
			engineCfg.Alpha = cfg.Run.Alpha
			engineCfg.MinObservations = cfg.Run.MinObservations
			engineCfg.MaxParents = cfg.Run.MaxParents

			result, err := engine.New(engineCfg, logger).DiscoverStructure(cmd.Context(), observations)
			if err != nil {
				return err
			}

			if err := writeJSON(outPath, result); err != nil {
				return err
			}
			logger.Info("wrote %s: %d nodes, %d edges, fit=%.3f, confidence=%.2f",
				outPath, len(result.Graph.Nodes), len(result.Graph.Edges),
				result.FitScore, result.OverallConfidence)

			if reportPath != "" {
				if err := writeReport(reportPath, result); err != nil {
					return err
				}
				logger.Info("wrote report %s", reportPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&observationsPath, "observations", cfg.Paths.ObservationsFile, "observations file (xlsx or csv)")
	cmd.Flags().StringVar(&priorsPath, "priors", cfg.Paths.PriorsFile, "priors catalogue YAML (default: built-in)")
	cmd.Flags().StringVar(&outPath, "out", cfg.Paths.GraphFile, "output JSON path for the discovery result")
	cmd.Flags().StringVar(&reportPath, "report", cfg.Paths.ReportFile, "optional report path (.md or .html)")
	return cmd
}

func validateCmd() *cobra.Command {
	var graphPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a graph snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(graphPath)
			if err != nil {
				return fmt.Errorf("read graph: %w", err)
			}
			var g causal.CausalGraph
			if err := json.Unmarshal(data, &g); err != nil {
				return fmt.Errorf("parse graph: %w", err)
			}
			validation := g.Validate()
			out, err := json.MarshalIndent(validation, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			if !validation.IsValid() {
				return fmt.Errorf("graph failed validation")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&graphPath, "graph", "graph.json", "graph JSON snapshot to validate")
	return cmd
}

func priorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "priors",
		Short: "Print the built-in priors catalogue as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(priors.Default())
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeReport(path string, result *engine.DiscoveryResult) error {
	if strings.HasSuffix(strings.ToLower(path), ".html") {
		return os.WriteFile(path, report.HTML(result), 0o644)
	}
	return os.WriteFile(path, []byte(report.Markdown(result)), 0o644)
}
