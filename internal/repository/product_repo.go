package repository

import (
	"context"
	"strings"

	"github.com/zakareajob-cpu/zak-crm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for the catalog and its
// per-customer price overrides.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// List returns every product, active first, then by full name.
	List(ctx context.Context) ([]model.Product, error)
	// Search matches query against full and short names and orders the page by
	// relevance then name. An empty query returns the first page by name.
	Search(ctx context.Context, query string, activeOnly bool, limit int) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	// Delete detaches invoice items, drops overrides and removes the product.
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CreateBatchTx(tx *gorm.DB, products []model.Product) error

	// Customer price overrides
	FindCustomerPrice(ctx context.Context, contactID, productID uuid.UUID) (*model.CustomerPrice, error)
	ListCustomerPrices(ctx context.Context, contactID uuid.UUID) ([]model.CustomerPrice, error)
	UpsertCustomerPrice(ctx context.Context, cp *model.CustomerPrice) error
	DeleteCustomerPrice(ctx context.Context, contactID, productID uuid.UUID) (bool, error)

	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("active DESC").Order("full_name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) Search(ctx context.Context, query string, activeOnly bool, limit int) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		err := q.Order("full_name ASC").Limit(limit).Find(&products).Error
		return products, err
	}

	like := "%" + escapeLike(term) + "%"
	prefix := escapeLike(term) + "%"
	q = q.Where(`(LOWER(full_name) LIKE ? ESCAPE '\' OR LOWER(short_name) LIKE ? ESCAPE '\')`, like, like)

	// Rank: exact short name, full-name prefix, short-name prefix, substring.
	rank := clause.OrderBy{Expression: clause.Expr{
		SQL: `CASE WHEN LOWER(short_name) = ? THEN 0
			WHEN LOWER(full_name) LIKE ? ESCAPE '\' THEN 1
			WHEN LOWER(short_name) LIKE ? ESCAPE '\' THEN 2
			ELSE 3 END, full_name ASC`,
		Vars:               []interface{}{term, prefix, prefix},
		WithoutParentheses: true,
	}}
	err := q.Order(rank).Limit(limit).Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Issued items keep their copied text and amounts; only the link goes.
		if err := tx.Model(&model.InvoiceItem{}).Where("product_id = ?", id).
			Update("product_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.CustomerPrice{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}

func (r *productRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("active = ?", true).Count(&n).Error
	return n, err
}

func (r *productRepo) CreateBatchTx(tx *gorm.DB, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	return tx.CreateInBatches(products, 100).Error
}

func (r *productRepo) FindCustomerPrice(ctx context.Context, contactID, productID uuid.UUID) (*model.CustomerPrice, error) {
	var cp model.CustomerPrice
	err := r.db.WithContext(ctx).
		Where("contact_id = ? AND product_id = ?", contactID, productID).
		First(&cp).Error
	return &cp, err
}

func (r *productRepo) ListCustomerPrices(ctx context.Context, contactID uuid.UUID) ([]model.CustomerPrice, error) {
	var prices []model.CustomerPrice
	err := r.db.WithContext(ctx).Preload("Product").
		Where("contact_id = ?", contactID).
		Order("created_at ASC").
		Find(&prices).Error
	return prices, err
}

func (r *productRepo) UpsertCustomerPrice(ctx context.Context, cp *model.CustomerPrice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contact_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"special_price", "updated_at"}),
	}).Create(cp).Error
}

func (r *productRepo) DeleteCustomerPrice(ctx context.Context, contactID, productID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("contact_id = ? AND product_id = ?", contactID, productID).
		Delete(&model.CustomerPrice{})
	return res.RowsAffected > 0, res.Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
