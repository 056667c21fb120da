package repository

import (
	"context"
	"strings"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactRepository defines the data access contract for contacts.
type ContactRepository interface {
	Create(ctx context.Context, c *model.Contact) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	List(ctx context.Context, filter dto.ContactFilter) ([]model.Contact, error)
	Update(ctx context.Context, c *model.Contact) error
	// Delete removes the contact and its customer prices in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)

	DB() *gorm.DB
}

type contactRepo struct{ db *gorm.DB }

func NewContactRepository(db *gorm.DB) ContactRepository { return &contactRepo{db: db} }

func (r *contactRepo) Create(ctx context.Context, c *model.Contact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *contactRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	var c model.Contact
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *contactRepo) List(ctx context.Context, filter dto.ContactFilter) ([]model.Contact, error) {
	var contacts []model.Contact
	q := r.db.WithContext(ctx).Model(&model.Contact{})
	if term := strings.TrimSpace(filter.Q); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		// LOWER/LIKE instead of ILIKE so the query runs on SQLite as well
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(company) LIKE ? ESCAPE '\'
			OR LOWER(country) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`,
			like, like, like, like)
	}
	err := q.Order("created_at DESC").Order("id").Find(&contacts).Error
	return contacts, err
}

func (r *contactRepo) Update(ctx context.Context, c *model.Contact) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *contactRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contact_id = ?", id).Delete(&model.CustomerPrice{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Contact{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *contactRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Contact{}).Count(&n).Error
	return n, err
}

func (r *contactRepo) DB() *gorm.DB { return r.db }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside a LIKE pattern that declares
// ESCAPE '\'.
func escapeLike(term string) string { return likeEscaper.Replace(term) }
