package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"stockcheck/api"
	"stockcheck/cmd"
	"stockcheck/internal/logger"
	"stockcheck/internal/util"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "stockcheck",
		Short:        "Value a stock portfolio against live quotes",
		SilenceUsage: true,
	}
	root.AddCommand(valueCmd())
	root.AddCommand(serveCmd())
	return root
}

func valueCmd() *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:   "value [holdings.csv]",
		Short: "Run one valuation pass and print it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if format != "json" && format != "table" {
				return fmt.Errorf("unknown format %q", format)
			}
			cfg, err := util.LoadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.HoldingsPath = args[0]
			}

			valuationService, err := cmd.InitializeValuationService(*cfg)
			if err != nil {
				return err
			}
			ctx := logger.NewContext(context.Background(), logger.New())
			valuation, err := valuationService.ValueHoldingsFile(ctx)
			if err != nil {
				return err
			}

			resp := api.NewValuationResponse(valuation)
			switch format {
			case "json":
				enc := json.NewEncoder(c.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			default:
				return printTable(c.OutOrStdout(), resp)
			}
		},
	}
	c.Flags().StringVar(&format, "format", "table", "output format: json or table")
	return c
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := util.LoadConfig()
			if err != nil {
				return err
			}
			apiHandler, err := cmd.InitializeDependencies(*cfg)
			if err != nil {
				return err
			}
			return apiHandler.StartApi(cfg.Port)
		},
	}
}

func printTable(out io.Writer, resp api.ValuationResponse) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Symbol\tName\tQty\tCost\tLast\tProfit\tProfit%\tYield@Cost\tStatus")
	for _, h := range resp.Holdings {
		status := h.Status
		if h.Stale {
			status += " (stale)"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			h.Symbol,
			h.Name,
			h.Quantity,
			h.AcquisitionPrice,
			orDash(h.LastPrice),
			orDash(h.Profit),
			orDash(h.ProfitPercent),
			orDash(h.YieldAtCost),
			status,
		)
	}
	fmt.Fprintln(w)
	s := resp.Summary
	fmt.Fprintf(w, "Total profit\t%s\n", s.TotalProfit)
	fmt.Fprintf(w, "Total dividends\t%s\n", s.TotalDividendIncome)
	fmt.Fprintf(w, "Market value\t%s\n", s.TotalMarketValue)
	fmt.Fprintf(w, "Cost basis\t%s\n", s.TotalCostBasis)
	fmt.Fprintf(w, "Priced\t%d/%d\n", s.PricedCount, s.TotalCount)
	for _, sk := range resp.Skipped {
		fmt.Fprintf(w, "Skipped row %d\t%s\n", sk.Row, sk.Reason)
	}
	return w.Flush()
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
