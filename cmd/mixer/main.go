package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/derekprior/mixer/internal/config"
	"github.com/derekprior/mixer/internal/excel"
	"github.com/derekprior/mixer/internal/report"
	"github.com/derekprior/mixer/internal/schedule"
	"github.com/derekprior/mixer/internal/strategy"
	"github.com/derekprior/mixer/internal/validator"
)

const defaultConfigFile = "config.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "mixer",
		Short: "Balanced mixed-team tournament round generator",
	}

	var (
		initOutputPath string
		initTeams      int
		initPlayers    int
		initSeed       int64
	)
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml with a random roster",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath, initTeams, initPlayers, initSeed)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")
	initCmd.Flags().IntVar(&initTeams, "teams", 4, "Number of teams in the starter roster")
	initCmd.Flags().IntVar(&initPlayers, "players", 4, "Players per team in the starter roster")
	initCmd.Flags().Int64Var(&initSeed, "seed", 1, "Seed for the starter roster and the schedule")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate and validate schedules",
	}

	var configFile string
	scheduleCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: config.yaml in current directory)")

	var (
		outputFile string
		chartFile  string
		verbose    bool
	)
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate a schedule from a config file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runGenerate(configPath, outputFile, chartFile, newLogger(verbose))
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "schedule.xlsx", "Output Excel file path")
	generateCmd.Flags().StringVar(&chartFile, "chart", "", "Also write a PNG chart of per-player imbalance")
	generateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log search progress")

	validateCmd := &cobra.Command{
		Use:          "validate <schedule.xlsx>",
		Short:        "Validate a schedule against config rules",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runValidate(configPath, args[0])
		},
	}

	scheduleCmd.AddCommand(generateCmd, validateCmd)
	rootCmd.AddCommand(initCmd, scheduleCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string, teams, players int, seed int64) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	data, err := config.Starter(teams, players, seed)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s (%d teams of %d players)\n", outputPath, teams, players)
	return nil
}

func runGenerate(configPath, outputPath, chartPath string, logger *logrus.Logger) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	t, err := schedule.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	gen, err := strategy.Get(cfg, logger.WithField("tournament", t.Name))
	if err != nil {
		return err
	}
	rest := schedule.NewRestRotation(t.Roster, rand.New(rand.NewSource(cfg.Seed)))

	fmt.Printf("Generating %d rounds for %d players in %d teams (%s)...\n",
		len(cfg.Rounds), t.Roster.Size(), len(t.Roster.Teams), cfg.Strategy)

	result, schedErr := schedule.Schedule(cfg, t, gen, rest)

	if schedErr != nil {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", schedErr)
		fmt.Fprintf(os.Stderr, "\nGenerating partial schedule...\n")
	} else {
		fmt.Printf("✓ All %d rounds generated\n", len(cfg.Rounds))
	}

	fmt.Println()
	if err := report.Text(os.Stdout, t); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	fmt.Println("\nPer Player Metrics:")
	fmt.Printf("  %-22s %6s %6s %9s\n", "Player", "Played", "Rested", "Imbalance")
	for _, p := range t.Roster.Players {
		m := result.PlayerMetrics[p.Name]
		fmt.Printf("  %s %6d %6d %9d\n", p.Pretty(), m.Played, m.Rested, m.Imbalance)
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\nGuideline violations (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("  ⚠ %s\n", w)
		}
	} else {
		fmt.Println("\n✓ No guideline violations")
	}

	f, err := excel.Generate(cfg, result)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	fmt.Printf("\n✓ Schedule saved to %s\n", outputPath)

	if chartPath != "" {
		png, err := report.ImbalanceChart(t, cfg.Guidelines.MaxImbalance)
		if err != nil {
			return fmt.Errorf("generating chart: %w", err)
		}
		if err := os.WriteFile(chartPath, png, 0644); err != nil {
			return fmt.Errorf("saving chart: %w", err)
		}
		fmt.Printf("✓ Chart saved to %s\n", chartPath)
	}

	if schedErr != nil {
		return fmt.Errorf("schedule is incomplete: %d of %d rounds generated", len(t.Rounds)-len(cfg.SeedRounds), len(cfg.Rounds))
	}
	return nil
}

func runValidate(configPath, schedulePath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	violations, err := validator.Validate(cfg, schedulePath)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	errors := 0
	warnings := 0
	for _, v := range violations {
		switch v.Type {
		case "error":
			errors++
			fmt.Printf("✗ Rule violation: %s\n", v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ Guideline violation: %s\n", v.Message)
		}
	}

	fmt.Printf("\nValidation complete: %d rule violations, %d guideline violations\n", errors, warnings)

	// Regenerate team sheets from the schedule sheet
	if err := excel.UpdateTeamSheets(schedulePath, cfg); err != nil {
		return fmt.Errorf("updating team sheets: %w", err)
	}
	fmt.Printf("✓ Team sheets updated in %s\n", schedulePath)

	if errors > 0 {
		return fmt.Errorf("%d constraint violations found", errors)
	}
	return nil
}
