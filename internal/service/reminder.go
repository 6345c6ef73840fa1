package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"anoa.com/homeboard/internal/dto"
	"anoa.com/homeboard/internal/model"
	"anoa.com/homeboard/internal/repository"
	"github.com/google/uuid"
)

// Sort modes for the general agenda.
const (
	SortByUrgency = "urgency"
	SortByTime    = "time"
)

// ReminderService merges the user's pending general records with ephemeral
// reminders derived from low medicine stock and scheduled shopping dates.
// Reminders are built per request and never persisted; they vanish as soon
// as the condition that produced them clears.
type ReminderService interface {
	BuildAgenda(ctx context.Context, userID uuid.UUID, sortBy string) ([]*dto.AgendaItem, error)
}

type reminderService struct {
	recordRepo repository.RecordRepository
	now        func() time.Time
}

func NewReminderService(recordRepo repository.RecordRepository) ReminderService {
	return &reminderService{
		recordRepo: recordRepo,
		now:        time.Now,
	}
}

func (s *reminderService) BuildAgenda(ctx context.Context, userID uuid.UUID, sortBy string) ([]*dto.AgendaItem, error) {
	today := s.now().Format(model.DateLayout)

	generals, err := s.recordRepo.List(ctx, userID, model.CategoryGeneral, model.StatusPending)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AgendaItem, 0, len(generals))
	for _, rec := range generals {
		items = append(items, &dto.AgendaItem{
			ID:      rec.ID.String(),
			Content: rec.Content,
			Date:    deref(rec.Date),
			Time:    deref(rec.Time),
			Urgency: urgencyString(rec.Urgency),
			Status:  string(rec.Status),
		})
	}

	lowStock, err := s.lowStockReminders(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	items = append(items, lowStock...)

	shoppingDays, err := s.shoppingDateReminders(ctx, userID)
	if err != nil {
		return nil, err
	}
	items = append(items, shoppingDays...)

	sortAgenda(items, sortBy)
	return items, nil
}

func (s *reminderService) lowStockReminders(ctx context.Context, userID uuid.UUID, today string) ([]*dto.AgendaItem, error) {
	medicines, err := s.recordRepo.List(ctx, userID, model.CategoryMedicine, model.StatusPending)
	if err != nil {
		return nil, err
	}

	var items []*dto.AgendaItem
	for _, med := range medicines {
		stock, ok := med.Stock()
		if !ok {
			continue
		}
		threshold, ok := med.Threshold()
		if !ok {
			continue
		}
		if stock >= threshold {
			continue
		}

		var personName *string
		content := fmt.Sprintf("药品「%s」库存不足（剩余 %d），请及时购买", med.Content, stock)
		if med.Person != nil {
			personName = &med.Person.Name
		}

		items = append(items, &dto.AgendaItem{
			ID:           "medicine-reminder:" + med.ID.String(),
			IsReminder:   true,
			ReminderType: "low_stock",
			Content:      content,
			Date:         today,
			Urgency:      string(model.UrgencyHigh),
			Status:       string(model.StatusPending),
			PersonName:   personName,
		})
	}
	return items, nil
}

func (s *reminderService) shoppingDateReminders(ctx context.Context, userID uuid.UUID) ([]*dto.AgendaItem, error) {
	dates, err := s.recordRepo.PendingShoppingDates(ctx, userID)
	if err != nil {
		return nil, err
	}

	var items []*dto.AgendaItem
	for _, date := range dates {
		items = append(items, &dto.AgendaItem{
			ID:           "shopping-reminder:" + date,
			IsReminder:   true,
			ReminderType: "shopping_date",
			Content:      fmt.Sprintf("%s 有待采购的购物清单", date),
			Date:         date,
			Urgency:      string(model.UrgencyMedium),
			Status:       string(model.StatusPending),
		})
	}
	return items, nil
}

// sortAgenda orders items by date ascending, then by the selected secondary
// key. Items without a date sort after dated ones.
func sortAgenda(items []*dto.AgendaItem, sortBy string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]

		if a.Date != b.Date {
			if a.Date == "" {
				return false
			}
			if b.Date == "" {
				return true
			}
			return a.Date < b.Date
		}

		if sortBy == SortByTime {
			if a.Time != b.Time {
				if a.Time == "" {
					return false
				}
				if b.Time == "" {
					return true
				}
				return a.Time < b.Time
			}
			return model.Urgency(a.Urgency).Rank() < model.Urgency(b.Urgency).Rank()
		}

		// Default: urgency first, unknown values last.
		ra, rb := model.Urgency(a.Urgency).Rank(), model.Urgency(b.Urgency).Rank()
		if ra != rb {
			return ra < rb
		}
		if a.Time == b.Time {
			return false
		}
		if a.Time == "" {
			return false
		}
		if b.Time == "" {
			return true
		}
		return a.Time < b.Time
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func urgencyString(u *model.Urgency) string {
	if u == nil {
		return ""
	}
	return string(*u)
}
