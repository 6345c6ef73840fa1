package dto

import (
	"github.com/google/uuid"
)

// CreateRecordRequest carries the union of all category fields; the record
// service checks the category-specific required subset before writing.
type CreateRecordRequest struct {
	Category string  `json:"category" binding:"required,oneof=general shopping clothes medicine"`
	Content  string  `json:"content" binding:"required"`
	PersonID *string `json:"person_id" binding:"omitempty,uuid"`

	Date    *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time    *string `json:"time"`
	Urgency *string `json:"urgency" binding:"omitempty,oneof=高 中 低"`

	Quantity *string `json:"quantity"`
	Unit     *string `json:"unit"`
	Brand    *string `json:"brand"`

	Type  *string `json:"type"`
	Color *string `json:"color"`

	Frequency         *string `json:"frequency"`
	Dosage            *string `json:"dosage"`
	Style             *string `json:"style"`
	TotalQuantity     *string `json:"total_quantity"`
	StartDate         *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	RefillQuantity    *string `json:"refill_quantity"`
	ReminderThreshold *string `json:"reminder_threshold"`
}

type UpdateRecordRequest struct {
	Content  *string `json:"content"`
	PersonID *string `json:"person_id" binding:"omitempty,uuid"`

	Date    *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time    *string `json:"time"`
	Urgency *string `json:"urgency" binding:"omitempty,oneof=高 中 低"`

	Quantity *string `json:"quantity"`
	Unit     *string `json:"unit"`
	Brand    *string `json:"brand"`

	Type  *string `json:"type"`
	Color *string `json:"color"`

	Frequency         *string `json:"frequency"`
	Dosage            *string `json:"dosage"`
	Style             *string `json:"style"`
	RefillQuantity    *string `json:"refill_quantity"`
	ReminderThreshold *string `json:"reminder_threshold"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending completed"`
}

type TogglePurchaseRequest struct {
	NeedsPurchase *bool `json:"needs_purchase" binding:"required"`
}

type SetQuantityRequest struct {
	TotalQuantity string `json:"total_quantity" binding:"required"`
}

type ListRecordsQuery struct {
	Category string `form:"category"`
	Status   string `form:"status"`
	SortBy   string `form:"sort_by"` // "urgency" (default) or "time"
}

// AgendaItem is one row of the general listing: either a persisted general
// record or an ephemeral reminder derived from medicine stock / pending
// shopping dates. Reminder ids are synthetic and never resolvable to rows.
type AgendaItem struct {
	ID           string  `json:"id"`
	IsReminder   bool    `json:"is_reminder"`
	ReminderType string  `json:"reminder_type,omitempty"` // "low_stock" | "shopping_date"
	Content      string  `json:"content"`
	Date         string  `json:"date,omitempty"`
	Time         string  `json:"time,omitempty"`
	Urgency      string  `json:"urgency,omitempty"`
	Status       string  `json:"status"`
	PersonName   *string `json:"person_name,omitempty"`
}

// ClothesGroup is the clothes listing grouped by person.
type ClothesGroup struct {
	PersonID   uuid.UUID      `json:"person_id"`
	PersonName string         `json:"person_name"`
	Items      []*ClothesItem `json:"items"`
}

type ClothesItem struct {
	ID       uuid.UUID `json:"id"`
	Content  string    `json:"content"`
	Type     *string   `json:"type,omitempty"`
	Color    *string   `json:"color,omitempty"`
	Quantity *string   `json:"quantity,omitempty"`
}
