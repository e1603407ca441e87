package validator

import "time"

// Status is the lifecycle state of a price validation record.
type Status string

const (
	StatusUnvalidated Status = "unvalidated"
	StatusValid       Status = "valid"
	StatusInvalid     Status = "invalid"
)

// Record is the persisted validation state for one item. Valid records carry
// the authoritative price and the discrepancy observed against the external
// quote; invalid records are a durable negative cache.
type Record struct {
	ItemID      string
	Status      Status
	AuthPrice   float64 // authoritative price, meaningful only when valid
	Discrepancy float64 // percent difference external vs authoritative
	CheckedAt   time.Time
}

// RecordStore persists validation records. Each Put must be atomic per item:
// a reader never observes status and price from two different attempts.
type RecordStore interface {
	Get(itemID string) (Record, bool, error)
	Put(rec Record) error
	// Reset clears every record, positive and negative. Administrative
	// operation; nothing else ever clears invalid records.
	Reset() error
}
