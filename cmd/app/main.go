package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"TradeDesk/internal/di"
	"TradeDesk/internal/usecase"
	"TradeDesk/pkg/config"
)

var configPath string

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "tradedesk",
		Short:         "Multi-agent trading desk simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file path")
	root.AddCommand(serveCmd(), analyzeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server, event stream and monitor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization: %w", err)
			}
			return app.Run()
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [symbols...]",
		Short: "Run one trading session over the given symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization: %w", err)
			}

			result, err := app.AnalyzeOnce(cmd.Context(), args)
			if err != nil {
				return err
			}

			for _, symbol := range result.Symbols {
				r := result.Results[symbol]
				if r == nil {
					continue
				}
				if r.Failed() {
					fmt.Printf("%-8s failed: %s\n", symbol, r.Err)
					continue
				}
				fmt.Printf("%-8s %-5s confidence=%.1f approved=%v\n",
					symbol, r.Decision.Action, r.Decision.Confidence, r.Approved)
			}
			fmt.Printf("\nsession %s: %d analyzed, %d approved, %d executed (%.0f%% approval)\n",
				result.SessionID,
				result.Summary.SuccessfulAnalyses,
				result.Summary.ApprovedTrades,
				result.Summary.ExecutedTrades,
				result.Summary.ApprovalRate*100,
			)

			return printPerformance(app.Desk())
		},
	}
}

func printPerformance(desk *usecase.Desk) error {
	portfolio, err := json.MarshalIndent(desk.PortfolioPerformance(), "", "  ")
	if err != nil {
		return err
	}
	agents, err := json.MarshalIndent(desk.AgentPerformance(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("\nportfolio performance:\n%s\n\nagent performance:\n%s\n", portfolio, agents)
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default()
	}
	return nil, err
}
