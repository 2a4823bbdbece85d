package main

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/xhit/go-str2duration/v2"

	"github.com/raykavin/wheelhouse"
	"github.com/raykavin/wheelhouse/pkg/config"
	"github.com/raykavin/wheelhouse/pkg/core"
	"github.com/raykavin/wheelhouse/pkg/export"
	"github.com/raykavin/wheelhouse/pkg/metric"
	"github.com/raykavin/wheelhouse/pkg/notification"
	"github.com/raykavin/wheelhouse/pkg/orchestrator"
	"github.com/raykavin/wheelhouse/pkg/recommend"
	"github.com/raykavin/wheelhouse/pkg/storage"
	"github.com/raykavin/wheelhouse/pkg/strategy/rotator"
	"github.com/raykavin/wheelhouse/pkg/strategy/wheel"
)

// Command line flags
var (
	configFile   string
	weeks        int
	dataMode     string
	outputPrefix string
	dbFile       string
	fetchTimeout string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "wheelhouse",
		Short:   "Multi-strategy trading simulator",
		Version: "1.0.0",
	}

	rootCmd.AddCommand(buildSimulateCmd())
	rootCmd.AddCommand(buildCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildSimulateCmd() *cobra.Command {
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the configured strategies over simulated weeks",
		RunE:  runSimulate,
	}

	simulateCmd.Flags().StringVarP(&configFile, "config", "c", "", "Configuration file path (e.g. ./wheelhouse.yml)")
	simulateCmd.Flags().IntVarP(&weeks, "weeks", "w", 0, "Number of weeks to simulate (overrides config)")
	simulateCmd.Flags().StringVarP(&dataMode, "data-mode", "m", "", "Data mode: mock, live or hybrid (overrides config)")
	simulateCmd.Flags().StringVarP(&outputPrefix, "output", "o", "", "CSV output prefix (e.g. ./results)")
	simulateCmd.Flags().StringVarP(&dbFile, "db", "d", "", "Trade database file (default in-memory)")
	simulateCmd.Flags().StringVarP(&fetchTimeout, "fetch-timeout", "t", "5m", "Overall run timeout (e.g. 90s, 5m)")

	return simulateCmd
}

func buildCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Probe the configured data sources",
		RunE:  runCheck,
	}

	checkCmd.Flags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	checkCmd.Flags().StringVarP(&dataMode, "data-mode", "m", "", "Data mode: mock, live or hybrid (overrides config)")

	return checkCmd
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	log := wheelhouse.DefaultLog

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	timeout, err := str2duration.ParseDuration(fetchTimeout)
	if err != nil {
		return fmt.Errorf("invalid fetch-timeout: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	bar := progressbar.Default(int64(len(cfg.EnabledStrategies())), "simulating")

	options := []orchestrator.Option{
		orchestrator.WithTradeStorage(store),
		orchestrator.WithRunRecorder(store),
		orchestrator.WithStrategyCompleted(func(string) {
			if err := bar.Add(1); err != nil {
				log.Warnf("update progressbar fail: %v", err)
			}
		}),
	}

	if cfg.Telegram.Enabled {
		notifier, err := notification.NewTelegram(cfg.Telegram, log)
		if err != nil {
			return err
		}
		options = append(options, orchestrator.WithNotifier(notifier))
	}

	orch := orchestrator.New(cfg, log, options...)

	result, err := orch.ExecuteSimulation(ctx, cfg.Weeks())
	if err != nil {
		return err
	}

	fmt.Println()
	export.WriteSummary(os.Stdout, result, metric.Compute(result.PortfolioHistory))
	printRecommendations(orch, cfg)

	if outputPrefix != "" {
		if err := writeCSVs(result.Trades); err != nil {
			return err
		}
		log.Infof("trade ledgers written with prefix %s", outputPrefix)
	}

	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	orch := orchestrator.New(cfg, wheelhouse.DefaultLog)

	failed := false
	for class, err := range orch.CheckSources(cmd.Context()) {
		if err != nil {
			failed = true
			fmt.Printf("%-8s FAIL  %v\n", class, err)
			continue
		}
		fmt.Printf("%-8s OK\n", class)
	}

	if failed {
		return fmt.Errorf("one or more data sources are unreachable")
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if weeks > 0 {
		cfg.Simulation.Weeks = weeks
	}
	if dataMode != "" {
		cfg.DataMode = dataMode
	}

	return cfg, cfg.Validate()
}

func openStorage() (*storage.BuntStorage, error) {
	if dbFile != "" {
		return storage.FromFile(dbFile)
	}
	return storage.FromMemory()
}

func printRecommendations(orch *orchestrator.Orchestrator, cfg *config.Config) {
	var recs []recommend.Recommendation

	for _, strat := range orch.Strategies() {
		switch ctrl := strat.(type) {
		case *wheel.Controller:
			recs = append(recs, recommend.ForWheel(ctrl, cfg.WheelSymbols, orch.Table(config.StrategyWheel))...)
		case *rotator.Controller:
			recs = append(recs, recommend.ForRotator(ctrl, cfg.RotatorSymbols, orch.Table(config.StrategyRotator))...)
		}
	}

	if len(recs) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("------ NEXT WEEK ------")
	for _, rec := range recs {
		fmt.Println(rec.String())
	}
}

func writeCSVs(trades []core.TradeRecord) error {
	if err := export.WriteStandardCSV(outputPrefix+"_trades.csv", trades); err != nil {
		return err
	}
	if err := export.WriteDetailedCSV(outputPrefix+"_trades_detailed.csv", trades); err != nil {
		return err
	}
	return export.WriteConsolidatedCSV(outputPrefix+"_trades_consolidated.csv", trades)
}
