package repository

import (
	"context"

	"anoa.com/homeboard/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PersonRepository interface {
	Create(ctx context.Context, person *model.Person) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Person, error)
	FindAll(ctx context.Context, userID uuid.UUID) ([]*model.Person, error)
	CountByName(ctx context.Context, userID uuid.UUID, name string) (int64, error)
	// DeleteCascade removes the person together with their clothing and
	// medicine records and any shopping rows generated from those medicines.
	DeleteCascade(ctx context.Context, userID, id uuid.UUID) error
}

type personRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &personRepository{db: db}
}

func (r *personRepository) Create(ctx context.Context, person *model.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *personRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Person, error) {
	var person model.Person
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepository) FindAll(ctx context.Context, userID uuid.UUID) ([]*model.Person, error) {
	var people []*model.Person
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&people).Error
	return people, err
}

func (r *personRepository) CountByName(ctx context.Context, userID uuid.UUID, name string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Person{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error
	return count, err
}

func (r *personRepository) DeleteCascade(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recordIDs []uuid.UUID
		if err := tx.Model(&model.Record{}).
			Where("user_id = ? AND person_id = ?", userID, id).
			Pluck("id", &recordIDs).Error; err != nil {
			return err
		}

		if len(recordIDs) > 0 {
			// Shopping rows generated from this person's medicines.
			if err := tx.Where("user_id = ? AND source_record_id IN ?", userID, recordIDs).
				Delete(&model.Record{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ? AND person_id = ?", userID, id).
				Delete(&model.Record{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&model.Person{}, "id = ? AND user_id = ?", id, userID).Error
	})
}
