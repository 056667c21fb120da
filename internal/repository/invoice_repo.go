package repository

import (
	"context"

	"github.com/zakareajob-cpu/zak-crm/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	// Create writes the header and then every item using tx. Callers own the
	// transaction so a failed item insert rolls the header back too.
	Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	// List returns headers newest first with the contact preloaded.
	List(ctx context.Context) ([]model.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountByContact(ctx context.Context, contactID uuid.UUID) (int64, error)
	SumTotals(ctx context.Context) (decimal.Decimal, error)
	DB() *gorm.DB
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) DB() *gorm.DB { return r.db }

func (r *invoiceRepo) Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	tx = tx.WithContext(ctx)
	if err := tx.Omit(clause.Associations).Create(inv).Error; err != nil {
		return err
	}
	for i := range inv.Items {
		inv.Items[i].InvoiceID = inv.ID
	}
	if len(inv.Items) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&inv.Items).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Contact").
		First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *invoiceRepo) List(ctx context.Context) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).Preload("Contact").
		Order("created_at DESC").Order("invoice_no DESC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&model.InvoiceItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Invoice{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *invoiceRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).Count(&n).Error
	return n, err
}

func (r *invoiceRepo) CountByContact(ctx context.Context, contactID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).Where("contact_id = ?", contactID).Count(&n).Error
	return n, err
}

func (r *invoiceRepo) SumTotals(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Select("COALESCE(SUM(total_amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
