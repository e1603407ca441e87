package db

import (
	"database/sql"
	"fmt"
	"time"

	"tradeup-scout/internal/logger"
	"tradeup-scout/internal/validator"
)

// Get returns the stored validation record for an item, if any.
// Implements validator.RecordStore.
func (d *DB) Get(itemID string) (validator.Record, bool, error) {
	var (
		rec       validator.Record
		status    string
		checkedAt string
	)
	err := d.sql.QueryRow(`
		SELECT item_id, status, auth_price, discrepancy, checked_at
		FROM validation_records WHERE item_id = ?
	`, itemID).Scan(&rec.ItemID, &status, &rec.AuthPrice, &rec.Discrepancy, &checkedAt)
	if err == sql.ErrNoRows {
		return validator.Record{}, false, nil
	}
	if err != nil {
		return validator.Record{}, false, fmt.Errorf("get validation record: %w", err)
	}
	rec.Status = validator.Status(status)
	ts, err := time.Parse(time.RFC3339, checkedAt)
	if err != nil {
		return validator.Record{}, false, fmt.Errorf("parse checked_at %q: %w", checkedAt, err)
	}
	rec.CheckedAt = ts
	return rec, true, nil
}

// Put upserts a validation record. The single INSERT .. ON CONFLICT keeps the
// write atomic per item.
func (d *DB) Put(rec validator.Record) error {
	_, err := d.sql.Exec(`
		INSERT INTO validation_records (item_id, status, auth_price, discrepancy, checked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(item_id)
		DO UPDATE SET
			status      = excluded.status,
			auth_price  = excluded.auth_price,
			discrepancy = excluded.discrepancy,
			checked_at  = excluded.checked_at
	`, rec.ItemID, string(rec.Status), rec.AuthPrice, rec.Discrepancy,
		rec.CheckedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put validation record: %w", err)
	}
	return nil
}

// Reset clears every validation record, including the negative cache.
func (d *DB) Reset() error {
	res, err := d.sql.Exec(`DELETE FROM validation_records`)
	if err != nil {
		return fmt.Errorf("reset validation records: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		logger.Info("DB", fmt.Sprintf("Cleared %d validation records", n))
	}
	return nil
}

// ValidationCounts returns how many records sit in each status, for the
// startup summary.
func (d *DB) ValidationCounts() (map[validator.Status]int, error) {
	rows, err := d.sql.Query(`SELECT status, COUNT(*) FROM validation_records GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count validation records: %w", err)
	}
	defer rows.Close()

	counts := make(map[validator.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[validator.Status(status)] = n
	}
	return counts, rows.Err()
}
