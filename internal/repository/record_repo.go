package repository

import (
	"context"

	"anoa.com/homeboard/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecordRepository interface {
	// Transaction runs fn against a repository bound to one database
	// transaction. Every linker transition and stock recompute goes
	// through here so a failure rolls the whole step back.
	Transaction(ctx context.Context, fn func(RecordRepository) error) error

	Create(ctx context.Context, rec *model.Record) error
	Save(ctx context.Context, rec *model.Record) error
	UpdateColumns(ctx context.Context, id uuid.UUID, values map[string]interface{}) error
	Delete(ctx context.Context, userID, id uuid.UUID) error

	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Record, error)
	List(ctx context.Context, userID uuid.UUID, category model.Category, status model.Status) ([]*model.Record, error)
	ListClothes(ctx context.Context, userID uuid.UUID) ([]*model.Record, error)

	FindPendingShoppingBySource(ctx context.Context, userID, sourceID uuid.UUID) (*model.Record, error)
	DeletePendingShoppingBySource(ctx context.Context, userID, sourceID uuid.UUID) error
	DeleteShoppingBySource(ctx context.Context, userID, sourceID uuid.UUID) error
	PendingShoppingDates(ctx context.Context, userID uuid.UUID) ([]string, error)
	LinkedPendingShoppingSources(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	DeleteAllShopping(ctx context.Context, userID uuid.UUID) error
	ClearNeedsPurchase(ctx context.Context, userID uuid.UUID, medicineIDs []uuid.UUID) error
}

type recordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Transaction(ctx context.Context, fn func(RecordRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&recordRepository{db: tx})
	})
}

func (r *recordRepository) Create(ctx context.Context, rec *model.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recordRepository) Save(ctx context.Context, rec *model.Record) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *recordRepository) UpdateColumns(ctx context.Context, id uuid.UUID, values map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Record{}).
		Where("id = ?", id).
		Updates(values).Error
}

func (r *recordRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Record{}).Error
}

func (r *recordRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Record, error) {
	var rec model.Record
	if err := r.db.WithContext(ctx).
		Preload("Person").
		Where("id = ? AND user_id = ?", id, userID).
		First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepository) List(ctx context.Context, userID uuid.UUID, category model.Category, status model.Status) ([]*model.Record, error) {
	var records []*model.Record
	err := r.db.WithContext(ctx).
		Preload("Person").
		Where("user_id = ? AND category = ? AND status = ?", userID, category, status).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *recordRepository) ListClothes(ctx context.Context, userID uuid.UUID) ([]*model.Record, error) {
	var records []*model.Record
	err := r.db.WithContext(ctx).
		Preload("Person").
		Joins("JOIN people ON people.id = records.person_id").
		Where("records.user_id = ? AND records.category = ?", userID, model.CategoryClothes).
		Order("people.name ASC, records.created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *recordRepository) FindPendingShoppingBySource(ctx context.Context, userID, sourceID uuid.UUID) (*model.Record, error) {
	var rec model.Record
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ? AND status = ? AND source_record_id = ?",
			userID, model.CategoryShopping, model.StatusPending, sourceID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepository) DeletePendingShoppingBySource(ctx context.Context, userID, sourceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND category = ? AND status = ? AND source_record_id = ?",
			userID, model.CategoryShopping, model.StatusPending, sourceID).
		Delete(&model.Record{}).Error
}

func (r *recordRepository) DeleteShoppingBySource(ctx context.Context, userID, sourceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND category = ? AND source_record_id = ?",
			userID, model.CategoryShopping, sourceID).
		Delete(&model.Record{}).Error
}

func (r *recordRepository) PendingShoppingDates(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var dates []string
	err := r.db.WithContext(ctx).Model(&model.Record{}).
		Distinct("date").
		Where("user_id = ? AND category = ? AND status = ? AND date IS NOT NULL AND date <> ''",
			userID, model.CategoryShopping, model.StatusPending).
		Order("date ASC").
		Pluck("date", &dates).Error
	return dates, err
}

func (r *recordRepository) LinkedPendingShoppingSources(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Record{}).
		Where("user_id = ? AND category = ? AND status = ? AND source_record_id IS NOT NULL",
			userID, model.CategoryShopping, model.StatusPending).
		Pluck("source_record_id", &ids).Error
	return ids, err
}

func (r *recordRepository) DeleteAllShopping(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, model.CategoryShopping).
		Delete(&model.Record{}).Error
}

func (r *recordRepository) ClearNeedsPurchase(ctx context.Context, userID uuid.UUID, medicineIDs []uuid.UUID) error {
	if len(medicineIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Record{}).
		Where("user_id = ? AND id IN ?", userID, medicineIDs).
		UpdateColumn("needs_purchase", false).Error
}
