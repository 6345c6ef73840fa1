package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/homeboard/internal/dto"
	"anoa.com/homeboard/internal/model"
	"anoa.com/homeboard/internal/repository"
	"anoa.com/homeboard/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultReminderThreshold = "5"

type RecordService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateRecordRequest) (*model.Record, error)
	Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateRecordRequest) (*model.Record, error)
	// UpdateStatus changes a record's status; for a shopping row generated
	// from a medicine, completing refills the medicine and reopening
	// reverses the refill, atomically.
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.Status) error
	// Delete removes a record with its linkage cascades: a medicine takes
	// its generated shopping rows with it, a linked shopping row clears
	// the medicine's needs-purchase flag.
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// ClearShopping wipes the shopping list and resets the purchase flag
	// of every medicine that still had a pending generated row.
	ClearShopping(ctx context.Context, userID uuid.UUID) error

	ListRecords(ctx context.Context, userID uuid.UUID, category model.Category, status model.Status) ([]*model.Record, error)
	ListClothes(ctx context.Context, userID uuid.UUID) ([]*dto.ClothesGroup, error)
}

type recordService struct {
	recordRepo repository.RecordRepository
	personRepo repository.PersonRepository
	now        func() time.Time
}

func NewRecordService(recordRepo repository.RecordRepository, personRepo repository.PersonRepository) RecordService {
	return &recordService{
		recordRepo: recordRepo,
		personRepo: personRepo,
		now:        time.Now,
	}
}

func (s *recordService) resolvePerson(ctx context.Context, userID uuid.UUID, personID *string) (*uuid.UUID, error) {
	if personID == nil || *personID == "" {
		return nil, nil
	}
	pid, err := uuid.Parse(*personID)
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "invalid person id", apperror.ErrBadRequest)
	}
	if _, err := s.personRepo.FindByID(ctx, userID, pid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "person not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	return &pid, nil
}

func (s *recordService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateRecordRequest) (*model.Record, error) {
	category := model.Category(req.Category)

	pid, err := s.resolvePerson(ctx, userID, req.PersonID)
	if err != nil {
		return nil, err
	}
	if category == model.CategoryClothes && pid == nil {
		return nil, apperror.New(http.StatusBadRequest, "clothes records require a person", apperror.ErrBadRequest)
	}

	rec := &model.Record{
		UserID:   userID,
		PersonID: pid,
		Category: category,
		Content:  req.Content,
		Status:   model.StatusPending,
		Date:     req.Date,
		Time:     req.Time,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Brand:    req.Brand,
		Type:     req.Type,
		Color:    req.Color,
	}
	if req.Urgency != nil {
		u := model.Urgency(*req.Urgency)
		rec.Urgency = &u
	}

	if category == model.CategoryMedicine {
		rec.Frequency = req.Frequency
		rec.Dosage = req.Dosage
		rec.Style = req.Style
		rec.TotalQuantity = req.TotalQuantity
		rec.StartDate = req.StartDate
		rec.RefillQuantity = req.RefillQuantity
		rec.ReminderThreshold = req.ReminderThreshold
		if rec.ReminderThreshold == nil {
			threshold := defaultReminderThreshold
			rec.ReminderThreshold = &threshold
		}
		if rec.StartDate == nil {
			today := s.now().Format(model.DateLayout)
			rec.StartDate = &today
		}
	}

	if err := s.recordRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recordService) Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateRecordRequest) (*model.Record, error) {
	rec, err := s.recordRepo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if req.PersonID != nil {
		pid, err := s.resolvePerson(ctx, userID, req.PersonID)
		if err != nil {
			return nil, err
		}
		rec.PersonID = pid
	}
	if req.Content != nil {
		rec.Content = *req.Content
	}
	if req.Date != nil {
		rec.Date = req.Date
	}
	if req.Time != nil {
		rec.Time = req.Time
	}
	if req.Urgency != nil {
		u := model.Urgency(*req.Urgency)
		rec.Urgency = &u
	}
	if req.Quantity != nil {
		rec.Quantity = req.Quantity
	}
	if req.Unit != nil {
		rec.Unit = req.Unit
	}
	if req.Brand != nil {
		rec.Brand = req.Brand
	}
	if req.Type != nil {
		rec.Type = req.Type
	}
	if req.Color != nil {
		rec.Color = req.Color
	}
	if req.Frequency != nil {
		rec.Frequency = req.Frequency
	}
	if req.Dosage != nil {
		rec.Dosage = req.Dosage
	}
	if req.Style != nil {
		rec.Style = req.Style
	}
	if req.RefillQuantity != nil {
		rec.RefillQuantity = req.RefillQuantity
	}
	if req.ReminderThreshold != nil {
		rec.ReminderThreshold = req.ReminderThreshold
	}

	if err := s.recordRepo.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recordService) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.Status) error {
	if !status.Valid() {
		return apperror.New(http.StatusBadRequest, "invalid status", apperror.ErrBadRequest)
	}
	todayStr := s.now().Format(model.DateLayout)

	return s.recordRepo.Transaction(ctx, func(tx repository.RecordRepository) error {
		rec, err := tx.FindByID(ctx, userID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}
		if rec.Status == status {
			return nil
		}

		// Linked shopping rows drive the medicine refill cycle.
		if rec.Category == model.CategoryShopping && rec.SourceRecordID != nil {
			// Only one pending generated row may exist per medicine, so a
			// stale completed row cannot be reopened past a newer one.
			if status == model.StatusPending {
				if _, err := tx.FindPendingShoppingBySource(ctx, userID, *rec.SourceRecordID); err == nil {
					return apperror.New(http.StatusConflict, "a pending shopping entry for this medicine already exists", apperror.ErrConflict)
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
			}

			med, err := tx.FindByID(ctx, userID, *rec.SourceRecordID)
			switch {
			case err == nil && med.Category == model.CategoryMedicine:
				var cols map[string]interface{}
				if status == model.StatusCompleted {
					cols = refillColumns(med, todayStr)
				} else {
					cols = unrefillColumns(med, todayStr)
				}
				if err := tx.UpdateColumns(ctx, med.ID, cols); err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				// Source medicine is gone; the status change still applies.
			case err != nil:
				return err
			}
		}

		return tx.UpdateColumns(ctx, rec.ID, map[string]interface{}{"status": status})
	})
}

func (s *recordService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.recordRepo.Transaction(ctx, func(tx repository.RecordRepository) error {
		rec, err := tx.FindByID(ctx, userID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}

		switch {
		case rec.Category == model.CategoryMedicine:
			if err := tx.DeleteShoppingBySource(ctx, userID, rec.ID); err != nil {
				return err
			}
		case rec.Category == model.CategoryShopping && rec.SourceRecordID != nil && rec.Status == model.StatusPending:
			// A completed generated row is history; only removing the pending
			// one turns the medicine's purchase flag off.
			err := tx.UpdateColumns(ctx, *rec.SourceRecordID, map[string]interface{}{"needs_purchase": false})
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		return tx.Delete(ctx, userID, rec.ID)
	})
}

func (s *recordService) ClearShopping(ctx context.Context, userID uuid.UUID) error {
	return s.recordRepo.Transaction(ctx, func(tx repository.RecordRepository) error {
		sources, err := tx.LinkedPendingShoppingSources(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.ClearNeedsPurchase(ctx, userID, sources); err != nil {
			return err
		}
		return tx.DeleteAllShopping(ctx, userID)
	})
}

func (s *recordService) ListRecords(ctx context.Context, userID uuid.UUID, category model.Category, status model.Status) ([]*model.Record, error) {
	return s.recordRepo.List(ctx, userID, category, status)
}

func (s *recordService) ListClothes(ctx context.Context, userID uuid.UUID) ([]*dto.ClothesGroup, error) {
	records, err := s.recordRepo.ListClothes(ctx, userID)
	if err != nil {
		return nil, err
	}

	var groups []*dto.ClothesGroup
	byPerson := map[uuid.UUID]*dto.ClothesGroup{}
	for _, rec := range records {
		if rec.PersonID == nil || rec.Person == nil {
			continue
		}
		group, ok := byPerson[*rec.PersonID]
		if !ok {
			group = &dto.ClothesGroup{
				PersonID:   *rec.PersonID,
				PersonName: rec.Person.Name,
			}
			byPerson[*rec.PersonID] = group
			groups = append(groups, group)
		}
		group.Items = append(group.Items, &dto.ClothesItem{
			ID:       rec.ID,
			Content:  rec.Content,
			Type:     rec.Type,
			Color:    rec.Color,
			Quantity: rec.Quantity,
		})
	}
	return groups, nil
}
