// Inspector prints a one-shot portfolio snapshot for one or more wallets,
// using the same data-api client and summary math as the daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/GoPolymarket/polycopy/internal/service"
	"github.com/ethereum/go-ethereum/common"
)

func main() {
	var (
		walletsFlag = flag.String("wallets", "", "comma-separated wallet addresses")
		dataAPI     = flag.String("data-api", "https://data-api.polymarket.com", "data-api base url")
		timeout     = flag.Duration("timeout", 15*time.Second, "request timeout")
	)
	flag.Parse()

	var wallets []string
	for _, w := range strings.Split(*walletsFlag, ",") {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if !common.IsHexAddress(w) {
			fmt.Fprintf(os.Stderr, "invalid wallet address: %s\n", w)
			os.Exit(1)
		}
		wallets = append(wallets, strings.ToLower(w))
	}
	if len(wallets) == 0 {
		fmt.Fprintln(os.Stderr, "usage: inspector -wallets 0xabc...,0xdef...")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := service.NewPositionsClient(*dataAPI, *timeout, 2, 10)
	for _, wallet := range wallets {
		positions, err := client.Positions(ctx, wallet)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", wallet, err)
			continue
		}
		summary := service.Summarize(wallet, positions)

		fmt.Printf("\n%s\n", wallet)
		fmt.Printf("  positions:      %d\n", summary.PositionCount)
		fmt.Printf("  total value:    $%s\n", summary.TotalValue.StringFixed(2))
		fmt.Printf("  initial value:  $%s\n", summary.InitialValue.StringFixed(2))
		fmt.Printf("  weighted pnl:   %s%%\n", summary.WeightedPnl.StringFixed(2))
		if len(summary.TopPositions) > 0 {
			fmt.Println("  top positions:")
			for _, p := range summary.TopPositions {
				fmt.Printf("    %-50s %-6s value $%-10s pnl $%s\n",
					truncate(p.Title, 50), p.Outcome,
					p.CurrentValue.StringFixed(2), p.CashPnl.StringFixed(2))
			}
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
