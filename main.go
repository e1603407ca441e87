package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tradeup-scout/internal/catalog"
	"tradeup-scout/internal/config"
	"tradeup-scout/internal/db"
	"tradeup-scout/internal/engine"
	"tradeup-scout/internal/logger"
	"tradeup-scout/internal/pricing"
	"tradeup-scout/internal/validator"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	minProfit := flag.Float64("min-profit", 0, "minimum expected profit (overrides config)")
	maxResults := flag.Int("max-results", 0, "stop after this many opportunities (overrides config)")
	offset := flag.Int("offset", 0, "skip this many ranked results")
	rarityFlag := flag.String("rarity", "", "comma-separated input rarities (default: all)")
	collectionsFlag := flag.String("collections", "", "comma-separated collection whitelist")
	maxInputPrice := flag.Float64("max-input-price", 0, "skip inputs above this price (overrides config)")
	guaranteedOnly := flag.Bool("guaranteed-only", false, "only report guaranteed-profit contracts")
	deadline := flag.Duration("deadline", 0, "abort the sweep after this long (0 = no limit)")
	resetValidation := flag.Bool("reset-validation", false, "clear the price validation cache and exit")
	flag.Parse()

	// .env is optional; real env vars win either way.
	godotenv.Load()

	logger.Banner(version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("CONFIG", fmt.Sprintf("Failed to load config: %v", err))
		os.Exit(1)
	}
	if *minProfit != 0 {
		cfg.MinProfit = *minProfit
	}
	if *maxResults != 0 {
		cfg.MaxResults = *maxResults
	}
	if *maxInputPrice != 0 {
		cfg.MaxInputPrice = *maxInputPrice
	}

	cache, err := db.Open(cfg.CachePath)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open cache database: %v", err))
		os.Exit(1)
	}
	defer cache.Close()

	if *resetValidation {
		if err := cache.Reset(); err != nil {
			logger.Error("DB", fmt.Sprintf("Reset failed: %v", err))
			os.Exit(1)
		}
		logger.Success("DB", "Validation cache cleared")
		return
	}

	store, err := catalog.OpenSQLite(cfg.CatalogPath)
	if err != nil {
		logger.Error("CATALOG", fmt.Sprintf("Failed to open catalog: %v", err))
		os.Exit(1)
	}
	defer store.Close()

	if counts, err := cache.ValidationCounts(); err == nil && len(counts) > 0 {
		logger.Info("DB", fmt.Sprintf("Validation cache: %d valid, %d invalid",
			counts[validator.StatusValid], counts[validator.StatusInvalid]))
	}

	oracle := pricing.NewOracle(cfg.OracleBaseURL, cfg.OracleAPIKey, cfg.RequestTimeout, cfg.QuoteCacheTTL)
	auth := pricing.NewAuthoritative(cfg.AuthoritativeBaseURL, cfg.RequestTimeout, cfg.RequestInterval, cfg.MaxRetries)
	v := validator.New(cache, auth,
		validator.WithTolerance(cfg.TolerancePercent),
		validator.WithFreshness(cfg.FreshnessWindow))
	pricer := &validator.Pricer{Oracle: oracle, V: v}

	sweeper := engine.NewSweeper(store, pricer, cfg.ValidationWorkers)

	params := engine.SweepParams{
		Rarities:       parseRarities(*rarityFlag),
		Collections:    splitList(*collectionsFlag),
		FeeRate:        cfg.FeeRate,
		MinProfit:      cfg.MinProfit,
		MaxInputPrice:  cfg.MaxInputPrice,
		GuaranteedOnly: *guaranteedOnly,
		MaxResults:     cfg.MaxResults,
		Offset:         *offset,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if *deadline > 0 {
		ctx, cancel = context.WithTimeout(ctx, *deadline)
		defer cancel()
	}

	start := time.Now()
	opps, incomplete, err := sweeper.Collect(ctx, params)
	if err != nil {
		logger.Error("SWEEP", fmt.Sprintf("Sweep failed: %v", err))
		os.Exit(1)
	}

	printOpportunities(opps)
	if incomplete {
		logger.Warn("SWEEP", "Results are partial: the sweep was interrupted")
	}
	logger.Success("SWEEP", fmt.Sprintf("Found %d opportunities in %s",
		len(opps), time.Since(start).Round(time.Millisecond)))

	topProfit := 0.0
	if len(opps) > 0 {
		topProfit = opps[0].Profit
	}
	if sweepID := cache.InsertSweep(rarityLabel(params.Rarities), len(opps), topProfit); sweepID > 0 {
		cache.InsertOpportunities(sweepID, opps)
	}
}

func printOpportunities(opps []engine.Opportunity) {
	for i, o := range opps {
		guaranteed := ""
		if o.Guaranteed {
			guaranteed = "  [GUARANTEED]"
		}
		fmt.Printf("#%d  %s  %s%s\n", i+1, o.Rarity, o.Split(), guaranteed)
		fmt.Printf("    cost $%.2f  EV $%.2f  net $%.2f  profit $%.2f  ROI %.1f%%\n",
			o.Cost, o.ExpectedValue, o.ExpectedNet, o.Profit, o.ROI)
		for _, out := range o.Outputs {
			price := "unpriced"
			if out.Priced {
				price = fmt.Sprintf("$%.2f", out.Price)
			}
			fmt.Printf("    %5.1f%%  %s (%s, float %.4f)  %s\n",
				out.Probability*100, out.BaseName, out.Wear, out.Float, price)
		}
	}
}

func parseRarities(s string) []catalog.Rarity {
	var out []catalog.Rarity
	for _, name := range splitList(s) {
		r := catalog.Rarity(name)
		if !r.Known() {
			logger.Warn("CONFIG", fmt.Sprintf("Ignoring unknown rarity %q", name))
			continue
		}
		out = append(out, r)
	}
	return out
}

func rarityLabel(rarities []catalog.Rarity) string {
	if len(rarities) == 0 {
		return "all"
	}
	names := make([]string, len(rarities))
	for i, r := range rarities {
		names[i] = string(r)
	}
	return strings.Join(names, ",")
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
