package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"signal_bot/internal/ledger"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/notify"
	"signal_bot/internal/pnl"
	"signal_bot/internal/universe"
	"signal_bot/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "botctl",
		Short:         "Operator tools for signal_bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			return err
		},
	}

	root.AddCommand(newPnLCmd(&cfg))
	root.AddCommand(newNotifyTestCmd(&cfg))
	root.AddCommand(newUniverseCmd(&cfg))
	return root
}

func newPnLCmd(cfg **config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pnl",
		Short: "Trade history, realized P&L and win rate per symbol",
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, _ := cmd.Flags().GetString("symbol")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			l, err := ledger.New(ctx, *cfg)
			if err != nil {
				return err
			}
			defer l.Close()
			return runPnL(ctx, cmd.OutOrStdout(), l, symbol)
		},
	}
	cmd.Flags().String("symbol", "", "only this symbol (all journaled symbols if empty)")
	return cmd
}

type recordReader interface {
	Records(ctx context.Context, symbol string) ([]models.TradeRecord, error)
	Symbols(ctx context.Context) ([]string, error)
}

func runPnL(ctx context.Context, w io.Writer, l recordReader, symbol string) error {
	symbols := []string{symbol}
	if symbol == "" {
		var err error
		if symbols, err = l.Symbols(ctx); err != nil {
			return err
		}
	}
	if len(symbols) == 0 {
		fmt.Fprintln(w, "No trades logged yet.")
		return nil
	}

	type row struct {
		symbol string
		report pnl.Report
		mark   string
	}
	rows := make([]row, 0, len(symbols))
	for _, s := range symbols {
		recs, err := l.Records(ctx, s)
		if err != nil {
			return errors.Wrapf(err, "records for %s", s)
		}
		report := pnl.Reconstruct(recs)
		writeHistory(w, s, len(recs), report)
		rows = append(rows, row{symbol: s, report: report, mark: pnl.MarkEstimate(recs).StringFixed(2)})
	}

	// сводка: от лучшего к худшему
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].report.Realized.GreaterThan(rows[j].report.Realized)
	})
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nSYMBOL\tTRADES\tWINS\tLOSSES\tWIN RATE\tNET P&L\tMARK EST.")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f%%\t$%s\t$%s\n",
			r.symbol, len(r.report.Trades), r.report.Wins, r.report.Losses,
			r.report.WinRate(), r.report.Realized.StringFixed(2), r.mark)
	}
	return tw.Flush()
}

func writeHistory(w io.Writer, symbol string, records int, r pnl.Report) {
	fmt.Fprintf(w, "\n📊 Stats for %s (%d records):\n", symbol, records)
	for i, t := range r.Trades {
		kind := "Loss"
		if t.Result.IsPositive() {
			kind = "Profit"
		}
		fmt.Fprintf(w, "Trade %d: %s of $%s (%s -> %s)\n",
			i+1, kind, t.Result.StringFixed(2), t.Buy.StringFixed(2), t.Sell.StringFixed(2))
	}
	fmt.Fprintf(w, "Total Trades: %d\n", len(r.Trades))
	fmt.Fprintf(w, "Profitable: %d | Unprofitable: %d\n", r.Wins, r.Losses)
	fmt.Fprintf(w, "Win Rate: %.2f%%\n", r.WinRate())
	fmt.Fprintf(w, "Net P&L: $%s\n", r.Realized.StringFixed(2))
}

func newNotifyTestCmd(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "notify-test",
		Short: "Send a test alert through the configured notifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			log, err := logger.New(c.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			n, err := notify.New(c, log)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := n.SendText(ctx, notify.TestText); err != nil {
				log.Error("test alert failed", zap.String("notifier", c.Notifier), zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Test alert sent via %s\n", c.Notifier)
			return nil
		},
	}
}

func newUniverseCmd(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "universe",
		Short: "Print the filtered symbol list",
		RunE: func(cmd *cobra.Command, args []string) error {
			syms, err := universe.Load((*cfg).UniverseFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range syms {
				fmt.Fprintln(out, s)
			}
			fmt.Fprintf(out, "%d symbols\n", len(syms))
			return nil
		},
	}
}
