package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"anoa.com/homeboard/internal/model"
	"anoa.com/homeboard/internal/repository"
	"anoa.com/homeboard/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// unknownPersonLabel is substituted when a medicine has no person attached
// and a shopping row content has to be derived from it.
const unknownPersonLabel = "未指定"

type MedicineService interface {
	// RollForward advances every medicine of the user to today: stock is
	// decremented by elapsed days × frequency × dosage (clamped at zero)
	// and the anchor date moves to today. Rows with missing or
	// unparseable schedule fields are left alone. Running it twice on the
	// same day is a no-op.
	RollForward(ctx context.Context, userID uuid.UUID) error

	// TogglePurchase sets or clears the needs-purchase flag and keeps the
	// generated shopping row in sync with it.
	TogglePurchase(ctx context.Context, userID, medicineID uuid.UUID, need bool) error

	// Refill adds the configured refill quantity to the stock, resets the
	// anchor date and completes any pending linked shopping row.
	Refill(ctx context.Context, userID, medicineID uuid.UUID) error

	// SetQuantity overwrites the stock and resets the anchor date so the
	// engine does not immediately consume against stale elapsed days.
	SetQuantity(ctx context.Context, userID, medicineID uuid.UUID, quantity string) error
}

type medicineService struct {
	recordRepo repository.RecordRepository
	now        func() time.Time
}

func NewMedicineService(recordRepo repository.RecordRepository) MedicineService {
	return &medicineService{
		recordRepo: recordRepo,
		now:        time.Now,
	}
}

func (s *medicineService) today() string {
	return s.now().Format(model.DateLayout)
}

func (s *medicineService) RollForward(ctx context.Context, userID uuid.UUID) error {
	todayStr := s.today()
	today, _ := time.Parse(model.DateLayout, todayStr)

	return s.recordRepo.Transaction(ctx, func(tx repository.RecordRepository) error {
		medicines, err := tx.List(ctx, userID, model.CategoryMedicine, model.StatusPending)
		if err != nil {
			return err
		}

		for _, med := range medicines {
			start, ok := med.StartDay()
			if !ok || !start.Before(today) {
				continue
			}
			total, ok := med.Stock()
			if !ok {
				continue
			}
			freq, ok := med.FrequencyPerDay()
			if !ok {
				continue
			}
			dose, ok := med.DosagePerIntake()
			if !ok {
				continue
			}

			daysPassed := int(today.Sub(start).Hours() / 24)
			consumed := daysPassed * freq * dose
			newQty := total - consumed
			if newQty < 0 {
				newQty = 0
			}

			if err := tx.UpdateColumns(ctx, med.ID, map[string]interface{}{
				"total_quantity": strconv.Itoa(newQty),
				"start_date":     todayStr,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *medicineService) TogglePurchase(ctx context.Context, userID, medicineID uuid.UUID, need bool) error {
	todayStr := s.today()

	return s.recordRepo.Transaction(ctx, func(tx repository.RecordRepository) error {
		med, err := tx.FindByID(ctx, userID, medicineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}
		if med.Category != model.CategoryMedicine {
			return apperror.New(http.StatusBadRequest, "record is not a medicine", apperror.ErrBadRequest)
		}

		if !need {
			if err := tx.DeletePendingShoppingBySource(ctx, userID, medicineID); err != nil {
				return err
			}
			return tx.UpdateColumns(ctx, medicineID, map[string]interface{}{"needs_purchase": false})
		}

		if _, err := tx.FindPendingShoppingBySource(ctx, userID, medicineID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			shopping := buildLinkedShopping(med, todayStr)
			if err := tx.Create(ctx, shopping); err != nil {
				return err
			}
		}
		return tx.UpdateColumns(ctx, medicineID, map[string]interface{}{"needs_purchase": true})
	})
}

func (s *medicineService) Refill(ctx context.Context, userID, medicineID uuid.UUID) error {
	todayStr := s.today()

	return s.recordRepo.Transaction(ctx, func(tx repository.RecordRepository) error {
		med, err := tx.FindByID(ctx, userID, medicineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}
		if med.Category != model.CategoryMedicine {
			return apperror.New(http.StatusBadRequest, "record is not a medicine", apperror.ErrBadRequest)
		}

		if err := tx.UpdateColumns(ctx, medicineID, refillColumns(med, todayStr)); err != nil {
			return err
		}

		// A pending linked shopping row is considered bought.
		shopping, err := tx.FindPendingShoppingBySource(ctx, userID, medicineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		return tx.UpdateColumns(ctx, shopping.ID, map[string]interface{}{"status": model.StatusCompleted})
	})
}

func (s *medicineService) SetQuantity(ctx context.Context, userID, medicineID uuid.UUID, quantity string) error {
	return s.recordRepo.Transaction(ctx, func(tx repository.RecordRepository) error {
		med, err := tx.FindByID(ctx, userID, medicineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}
		if med.Category != model.CategoryMedicine {
			return apperror.New(http.StatusBadRequest, "record is not a medicine", apperror.ErrBadRequest)
		}

		return tx.UpdateColumns(ctx, medicineID, map[string]interface{}{
			"total_quantity": quantity,
			"start_date":     s.today(),
		})
	})
}

// buildLinkedShopping derives the shopping row created when a medicine is
// flagged for purchase.
func buildLinkedShopping(med *model.Record, today string) *model.Record {
	personName := unknownPersonLabel
	if med.Person != nil {
		personName = med.Person.Name
	}

	content := fmt.Sprintf("%s - %s", personName, med.Content)
	date := today
	sourceID := med.ID

	return &model.Record{
		UserID:         med.UserID,
		Category:       model.CategoryShopping,
		Content:        content,
		Status:         model.StatusPending,
		Date:           &date,
		Quantity:       med.RefillQuantity,
		SourceRecordID: &sourceID,
	}
}

// refillColumns is the stock math shared by the explicit refill action and
// the completed-shopping transition.
func refillColumns(med *model.Record, today string) map[string]interface{} {
	total, ok := med.Stock()
	if !ok {
		total = 0
	}
	return map[string]interface{}{
		"total_quantity": strconv.Itoa(total + med.RefillAmount()),
		"start_date":     today,
		"needs_purchase": false,
	}
}

// unrefillColumns reverses a refill when a completed linked shopping row is
// reopened; stock clamps at zero.
func unrefillColumns(med *model.Record, today string) map[string]interface{} {
	total, ok := med.Stock()
	if !ok {
		total = 0
	}
	total -= med.RefillAmount()
	if total < 0 {
		total = 0
	}
	return map[string]interface{}{
		"total_quantity": strconv.Itoa(total),
		"start_date":     today,
		"needs_purchase": true,
	}
}
