package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"refine-arb/internal/config"
	"refine-arb/internal/db"
	"refine-arb/internal/engine"
	"refine-arb/internal/logger"
	"refine-arb/internal/market"
	"refine-arb/internal/refdata"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to backtest config file")
	date := flag.String("date", "", "backtest date (YYYY-MM-DD), overrides config")
	flag.Parse()

	logger.Banner(version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Config", fmt.Sprintf("Load failed: %v", err))
		os.Exit(1)
	}
	if *date != "" {
		cfg.Date = *date
	}
	if _, err := time.Parse("2006-01-02", cfg.Date); err != nil {
		logger.Error("Config", fmt.Sprintf("Invalid date %q, want YYYY-MM-DD", cfg.Date))
		os.Exit(1)
	}

	os.MkdirAll(cfg.DataDir, 0755)

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	data, err := refdata.Load(cfg.DataDir)
	if err != nil {
		logger.Error("SDE", fmt.Sprintf("Load failed: %v", err))
		os.Exit(1)
	}

	regionID, err := data.ResolveRegion(cfg.Region)
	if err != nil {
		logger.Error("SDE", err.Error())
		os.Exit(1)
	}
	if _, ok := data.Stations[cfg.StationID]; !ok {
		logger.Error("SDE", fmt.Sprintf("Unknown station %d", cfg.StationID))
		os.Exit(1)
	}

	sources := data.SourceTypes(cfg.Strategy.SourceGroupIDs)
	if len(sources) == 0 {
		logger.Error("SDE", "No refinable source types for configured groups")
		os.Exit(1)
	}
	materials := refdata.MaterialTypeIDs(sources)
	logger.Info("Scan", fmt.Sprintf("%d source types, %d materials", len(sources), len(materials)))

	client := market.NewClient(cfg.Providers.ArchiveURL, cfg.Providers.ESIURL, cfg.Providers.Concurrency, database)

	logger.Info("Market", fmt.Sprintf("Fetching daily volumes for %s", cfg.Date))
	dayVolumes, err := client.FetchDayVolumes(cfg.Date, regionID, materials)
	if err != nil {
		logger.Error("Market", fmt.Sprintf("History fetch failed: %v", err))
		os.Exit(1)
	}

	logger.Info("Market", fmt.Sprintf("Fetching order-book snapshots for %s", cfg.Date))
	snaps, err := client.FetchSnapshots(cfg.Date, regionID)
	if err != nil {
		logger.Error("Market", fmt.Sprintf("Snapshot fetch failed: %v", err))
		os.Exit(1)
	}
	if len(snaps) == 0 {
		logger.Error("Market", fmt.Sprintf("No snapshots for %s in %s", cfg.Date, cfg.Region))
		os.Exit(1)
	}
	logger.Success("Market", fmt.Sprintf("%d snapshots loaded", len(snaps)))

	// The engine only cares about source and material orders.
	wanted := make([]int32, 0, len(sources)+len(materials))
	for _, s := range sources {
		wanted = append(wanted, s.TypeID)
	}
	wanted = append(wanted, materials...)
	snaps = market.FilterTypes(snaps, wanted)

	params := engine.Params{
		StationID:   cfg.StationID,
		Efficiency:  cfg.Strategy.Efficiency,
		TaxRate:     cfg.Strategy.TaxRateDecimal(),
		BrokerFee:   cfg.Strategy.BrokerFeeDecimal(),
		StationTax:  cfg.Strategy.StationTaxDecimal(),
		VolumeLimit: cfg.Strategy.VolumeLimit,
		DayVolumes:  dayVolumes,
	}

	checker := refdata.NewRangeChecker(data)
	scanner := engine.NewScanner(sources, checker, params)

	start := time.Now()
	opps := scanner.Scan(snaps, func(msg string) {
		logger.Info("Scan", msg)
	})
	raw := len(opps)
	opps = engine.Deduplicate(opps, cfg.Strategy.DedupWindow)
	totals := engine.Aggregate(opps)
	elapsed := time.Since(start)

	logger.Section("Backtest Results")
	logger.Stats("Date", cfg.Date)
	logger.Stats("Region", cfg.Region)
	logger.Stats("Station", cfg.StationID)
	logger.Stats("Opportunities", totals.Count)
	logger.Stats("Raw (pre-dedup)", raw)
	logger.Stats("Gross", totals.Gross.StringFixed(2))
	logger.Stats("Cost", totals.Cost.StringFixed(2))
	logger.Stats("Profit", totals.Profit.StringFixed(2))
	logger.Stats("Return", fmt.Sprintf("%.2f%%", totals.Return*100))
	logger.Stats("Duration", elapsed.Round(time.Millisecond))

	logger.Section("Top Opportunities")
	for i, o := range topByProfit(opps, 10) {
		logger.Stats(
			fmt.Sprintf("%2d. %s", i+1, o.TypeName),
			fmt.Sprintf("%s ISK at %s", o.Profit.StringFixed(2), o.Time.Format("15:04")),
		)
	}

	runID := database.InsertRun(cfg.Date, regionID, cfg.StationID, totals, elapsed)
	database.InsertOpportunities(runID, opps)
	logger.Success("DB", fmt.Sprintf("Stored run %d", runID))
}

// topByProfit returns up to n opportunities ordered by descending profit.
func topByProfit(opps []engine.Opportunity, n int) []engine.Opportunity {
	sorted := make([]engine.Opportunity, len(opps))
	copy(sorted, opps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Profit.GreaterThan(sorted[j].Profit) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
