package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zakareajob-cpu/zak-crm/internal/model"

	"gorm.io/gorm"
)

// Invoice numbers look like HOTGEN-20250101-ZAK-001. The part before the
// sequence is the stem; sequences restart at 001 for every new stem.

// InvoiceStem builds PREFIX-YYYYMMDD-SUFFIX for the given day.
func InvoiceStem(prefix, suffix string, day time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, day.Format("20060102"), suffix)
}

// FormatInvoiceNo appends the zero-padded sequence to stem.
func FormatInvoiceNo(stem string, seq int) string {
	return fmt.Sprintf("%s-%03d", stem, seq)
}

// ParseInvoiceSeq extracts the trailing sequence of an invoice number issued
// under stem. ok is false for numbers that belong to another stem or carry a
// non-numeric tail.
func ParseInvoiceSeq(stem, invoiceNo string) (seq int, ok bool) {
	tail, found := strings.CutPrefix(invoiceNo, stem+"-")
	if !found || tail == "" {
		return 0, false
	}
	n, err := strconv.Atoi(tail)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// IsDuplicateKey reports whether err is a unique constraint violation on any
// of the supported drivers.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "23505")
}

// InvoiceNumberSource hands out sequences for a stem.
type InvoiceNumberSource interface {
	// Next reserves the next sequence inside tx. The reservation is only final
	// once tx commits; a concurrent writer may still collide on insert.
	Next(ctx context.Context, tx *gorm.DB, stem string) (int, error)
	// Peek returns the sequence Next would hand out right now without
	// reserving it.
	Peek(ctx context.Context, db *gorm.DB, stem string) (int, error)
}

// NewInvoiceNumberSource returns the counter-table source for "counter" and the
// scanning source for anything else.
func NewInvoiceNumberSource(kind string) InvoiceNumberSource {
	if kind == "counter" {
		return counterSource{}
	}
	return scanSource{}
}

// maxIssuedSeq returns the highest sequence already stored under stem, or 0.
func maxIssuedSeq(ctx context.Context, db *gorm.DB, stem string) (int, error) {
	var numbers []string
	err := db.WithContext(ctx).Model(&model.Invoice{}).
		Where("invoice_no LIKE ?", stem+"-%").
		Pluck("invoice_no", &numbers).Error
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, no := range numbers {
		if seq, ok := ParseInvoiceSeq(stem, no); ok && seq > highest {
			highest = seq
		}
	}
	return highest, nil
}

func isPostgres(db *gorm.DB) bool { return db.Dialector.Name() == "postgres" }

// scanSource derives the next sequence from the invoices table itself.
type scanSource struct{}

func (scanSource) Next(ctx context.Context, tx *gorm.DB, stem string) (int, error) {
	if isPostgres(tx) {
		// Serialize writers on the same stem until the transaction ends
		if err := tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", stem).Error; err != nil {
			return 0, err
		}
	}
	highest, err := maxIssuedSeq(ctx, tx, stem)
	if err != nil {
		return 0, err
	}
	return highest + 1, nil
}

func (scanSource) Peek(ctx context.Context, db *gorm.DB, stem string) (int, error) {
	highest, err := maxIssuedSeq(ctx, db, stem)
	if err != nil {
		return 0, err
	}
	return highest + 1, nil
}

// counterSource bumps a per-stem row in invoice_counters. The stored value is
// floored by what the invoices table already holds so imported or hand-made
// numbers are never reissued.
type counterSource struct{}

func (counterSource) Next(ctx context.Context, tx *gorm.DB, stem string) (int, error) {
	highest, err := maxIssuedSeq(ctx, tx, stem)
	if err != nil {
		return 0, err
	}
	greatest := "MAX"
	if isPostgres(tx) {
		greatest = "GREATEST"
	}
	sql := fmt.Sprintf(`INSERT INTO invoice_counters (day_key, last_seq) VALUES (?, ?)
		ON CONFLICT (day_key) DO UPDATE SET last_seq = %s(invoice_counters.last_seq + 1, excluded.last_seq)
		RETURNING last_seq`, greatest)

	var seq int
	if err := tx.WithContext(ctx).Raw(sql, stem, highest+1).Scan(&seq).Error; err != nil {
		return 0, err
	}
	return seq, nil
}

func (counterSource) Peek(ctx context.Context, db *gorm.DB, stem string) (int, error) {
	highest, err := maxIssuedSeq(ctx, db, stem)
	if err != nil {
		return 0, err
	}
	var counter model.InvoiceCounter
	err = db.WithContext(ctx).Where("day_key = ?", stem).Limit(1).Find(&counter).Error
	if err != nil {
		return 0, err
	}
	if counter.LastSeq > highest {
		highest = counter.LastSeq
	}
	return highest + 1, nil
}
