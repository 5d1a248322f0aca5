package db

import (
	"log"
	"time"

	"github.com/shopspring/decimal"

	"refine-arb/internal/engine"
)

// Run describes one persisted backtest run.
type Run struct {
	ID        int64
	Date      string
	RegionID  int32
	StationID int64
	CreatedAt string
	Count     int
	Gross     decimal.Decimal
	Cost      decimal.Decimal
	Profit    decimal.Decimal
}

// InsertRun records a completed backtest and returns its ID.
// Money columns are stored as TEXT so decimal values survive exactly.
func (d *DB) InsertRun(date string, regionID int32, stationID int64, totals engine.Totals, duration time.Duration) int64 {
	res, err := d.sql.Exec(`INSERT INTO scan_runs
		(date, region_id, station_id, created_at, opp_count, total_gross, total_cost, total_profit, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		date, regionID, stationID, time.Now().UTC().Format(time.RFC3339),
		totals.Count, totals.Gross.String(), totals.Cost.String(), totals.Profit.String(),
		duration.Milliseconds(),
	)
	if err != nil {
		log.Printf("[DB] InsertRun: %v", err)
		return 0
	}
	id, _ := res.LastInsertId()
	return id
}

// InsertOpportunities bulk-inserts opportunities and their fills for a run.
func (d *DB) InsertOpportunities(runID int64, opps []engine.Opportunity) {
	if runID == 0 || len(opps) == 0 {
		return
	}

	tx, err := d.sql.Begin()
	if err != nil {
		log.Printf("[DB] InsertOpportunities begin tx: %v", err)
		return
	}

	oppStmt, err := tx.Prepare(`INSERT INTO opportunities
		(run_id, time, type_id, type_name, gross, cost, profit, margin)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		log.Printf("[DB] InsertOpportunities prepare: %v", err)
		return
	}
	defer oppStmt.Close()

	orderStmt, err := tx.Prepare(`INSERT INTO opportunity_orders
		(opportunity_id, side, type_id, price, volume, is_market)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		log.Printf("[DB] InsertOpportunities prepare orders: %v", err)
		return
	}
	defer orderStmt.Close()

	for _, o := range opps {
		res, err := oppStmt.Exec(
			runID, o.Time.UTC().Format(time.RFC3339), o.TypeID, o.TypeName,
			o.Gross.String(), o.Cost.String(), o.Profit.String(), o.Margin,
		)
		if err != nil {
			continue
		}
		oppID, _ := res.LastInsertId()
		for _, b := range o.Buys {
			orderStmt.Exec(oppID, "buy", o.TypeID, b.Price.String(), b.Volume, b.IsMarket)
		}
		for typeID, fills := range o.Sells {
			for _, s := range fills {
				orderStmt.Exec(oppID, "sell", typeID, s.Price.String(), s.Volume, s.IsMarket)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[DB] InsertOpportunities commit: %v", err)
	}
}

// GetRuns returns the most recent runs, newest first.
func (d *DB) GetRuns(limit int) []Run {
	rows, err := d.sql.Query(`
		SELECT id, date, region_id, station_id, created_at, opp_count, total_gross, total_cost, total_profit
		FROM scan_runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var gross, cost, profit string
		if err := rows.Scan(&r.ID, &r.Date, &r.RegionID, &r.StationID, &r.CreatedAt, &r.Count, &gross, &cost, &profit); err != nil {
			continue
		}
		r.Gross, _ = decimal.NewFromString(gross)
		r.Cost, _ = decimal.NewFromString(cost)
		r.Profit, _ = decimal.NewFromString(profit)
		runs = append(runs, r)
	}
	return runs
}

// GetOpportunities retrieves the opportunities stored for a run.
func (d *DB) GetOpportunities(runID int64) []engine.Opportunity {
	rows, err := d.sql.Query(`
		SELECT time, type_id, type_name, gross, cost, profit, margin
		FROM opportunities WHERE run_id = ? ORDER BY time, type_id
	`, runID)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var opps []engine.Opportunity
	for rows.Next() {
		var o engine.Opportunity
		var ts, gross, cost, profit string
		if err := rows.Scan(&ts, &o.TypeID, &o.TypeName, &gross, &cost, &profit, &o.Margin); err != nil {
			continue
		}
		o.Time, _ = time.Parse(time.RFC3339, ts)
		o.Gross, _ = decimal.NewFromString(gross)
		o.Cost, _ = decimal.NewFromString(cost)
		o.Profit, _ = decimal.NewFromString(profit)
		opps = append(opps, o)
	}
	return opps
}
