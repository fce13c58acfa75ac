package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/mechrelay/am"
	"github.com/teranos/mechrelay/errors"
	"github.com/teranos/mechrelay/internal/util"
)

// HistoryCmd lists and summarises recorded interactions
var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent mech interactions",
	Long: `Show interactions recorded in the history database, newest first.

Examples:
  mechrelay history                 # Last 20 interactions
  mechrelay history --limit 5 --json
  mechrelay history stats --hours 168`,
	RunE: runHistory,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise interactions over a time window",
	RunE:  runHistoryStats,
}

var (
	historyLimit int
	historyJSON  bool
	historyHours int
)

func init() {
	HistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of interactions to show")
	HistoryCmd.PersistentFlags().BoolVarP(&historyJSON, "json", "j", false, "Output as JSON")
	historyStatsCmd.Flags().IntVar(&historyHours, "hours", 24, "Window size in hours")

	HistoryCmd.AddCommand(historyStatsCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	database, history, err := requireHistory(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	interactions, err := history.Recent(context.Background(), historyLimit)
	if err != nil {
		return err
	}

	if historyJSON {
		return printJSON(cmd, interactions)
	}
	if len(interactions) == 0 {
		pterm.Info.Println("No interactions recorded yet")
		return nil
	}

	rows := pterm.TableData{{"Started", "Source", "Tool", "Status", "Duration", "Prompt", "Result"}}
	for _, in := range interactions {
		status := pterm.Green("ok")
		outcome := string(in.Response)
		if !in.Success {
			status = pterm.Red("failed")
			if in.ErrorMessage != nil {
				outcome = *in.ErrorMessage
			}
		}
		rows = append(rows, []string{
			in.StartedAt.Local().Format("2006-01-02 15:04:05"),
			in.Source,
			in.Tool,
			status,
			(time.Duration(in.DurationMS) * time.Millisecond).String(),
			util.Truncate(in.Prompt, 40),
			util.Truncate(outcome, 50),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	if historyHours <= 0 {
		return errors.Newf("--hours must be positive, got %d", historyHours)
	}
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	database, history, err := requireHistory(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	since := time.Now().Add(-time.Duration(historyHours) * time.Hour)
	stats, err := history.Stats(ctx, since)
	if err != nil {
		return err
	}
	byTool, err := history.ByTool(ctx, since)
	if err != nil {
		return err
	}

	if historyJSON {
		return printJSON(cmd, map[string]any{"hours": historyHours, "stats": stats, "by_tool": byTool})
	}

	pterm.DefaultSection.Printf("Interactions in the last %d hours\n", historyHours)
	pterm.DefaultTable.WithData(pterm.TableData{
		{"Database", cfg.History.Path},
		{"Total", fmt.Sprintf("%d", stats.TotalRequests)},
		{"Succeeded", fmt.Sprintf("%d", stats.SuccessfulRequests)},
		{"Failed", fmt.Sprintf("%d", stats.FailedRequests)},
		{"Success rate", fmt.Sprintf("%.1f%%", stats.SuccessRate*100)},
		{"Avg duration", (time.Duration(stats.AvgDurationMS) * time.Millisecond).String()},
	}).Render()

	if len(byTool) == 0 {
		return nil
	}
	rows := pterm.TableData{{"Tool", "Chain", "Requests", "Succeeded", "Avg duration"}}
	for _, t := range byTool {
		rows = append(rows, []string{
			t.Tool,
			t.ChainConfig,
			fmt.Sprintf("%d", t.RequestCount),
			fmt.Sprintf("%d", t.SuccessCount),
			(time.Duration(t.AvgDurationMS) * time.Millisecond).String(),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to format JSON")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
