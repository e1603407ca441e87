package db

import (
	"fmt"
	"time"

	"tradeup-scout/internal/engine"
	"tradeup-scout/internal/logger"
)

// SweepRecord is one row of sweep history.
type SweepRecord struct {
	ID        int64
	Timestamp string
	Rarities  string
	Count     int
	TopProfit float64
}

// InsertSweep records a completed sweep and returns its id.
func (d *DB) InsertSweep(rarities string, count int, topProfit float64) int64 {
	res, err := d.sql.Exec(`
		INSERT INTO sweep_history (timestamp, rarities, count, top_profit)
		VALUES (?, ?, ?, ?)
	`, time.Now().UTC().Format(time.RFC3339), rarities, count, topProfit)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("InsertSweep: %v", err))
		return 0
	}
	id, _ := res.LastInsertId()
	return id
}

// GetSweeps retrieves the most recent sweep records, newest first.
func (d *DB) GetSweeps(limit int) []SweepRecord {
	rows, err := d.sql.Query(`
		SELECT id, timestamp, rarities, count, top_profit
		FROM sweep_history ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var records []SweepRecord
	for rows.Next() {
		var r SweepRecord
		rows.Scan(&r.ID, &r.Timestamp, &r.Rarities, &r.Count, &r.TopProfit)
		records = append(records, r)
	}
	return records
}

// InsertOpportunities bulk-inserts evaluated opportunities linked to a sweep.
func (d *DB) InsertOpportunities(sweepID int64, results []engine.Opportunity) {
	if sweepID == 0 || len(results) == 0 {
		return
	}

	tx, err := d.sql.Begin()
	if err != nil {
		logger.Error("DB", fmt.Sprintf("InsertOpportunities begin tx: %v", err))
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO opportunity_results (
		sweep_id, rarity, split, cost,
		expected_value, expected_net, profit, roi, guaranteed
	) VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		logger.Error("DB", fmt.Sprintf("InsertOpportunities prepare: %v", err))
		return
	}
	defer stmt.Close()

	for _, r := range results {
		guaranteed := 0
		if r.Guaranteed {
			guaranteed = 1
		}
		stmt.Exec(
			sweepID, string(r.Rarity), r.Split(), r.Cost,
			r.ExpectedValue, r.ExpectedNet, r.Profit, r.ROI, guaranteed,
		)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("DB", fmt.Sprintf("InsertOpportunities commit: %v", err))
	}
}

// OpportunityRow is a persisted opportunity summary.
type OpportunityRow struct {
	Rarity        string
	Split         string
	Cost          float64
	ExpectedValue float64
	ExpectedNet   float64
	Profit        float64
	ROI           float64
	Guaranteed    bool
}

// GetOpportunities retrieves the persisted results for a sweep.
func (d *DB) GetOpportunities(sweepID int64) []OpportunityRow {
	rows, err := d.sql.Query(`
		SELECT rarity, split, cost, expected_value, expected_net, profit, roi, guaranteed
		FROM opportunity_results WHERE sweep_id = ? ORDER BY profit DESC
	`, sweepID)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var results []OpportunityRow
	for rows.Next() {
		var r OpportunityRow
		var guaranteed int
		rows.Scan(&r.Rarity, &r.Split, &r.Cost, &r.ExpectedValue, &r.ExpectedNet,
			&r.Profit, &r.ROI, &guaranteed)
		r.Guaranteed = guaranteed == 1
		results = append(results, r)
	}
	return results
}
