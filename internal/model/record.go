package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the wire format for all record dates ("2025-08-29").
const DateLayout = "2006-01-02"

type Category string

const (
	CategoryGeneral  Category = "general"
	CategoryShopping Category = "shopping"
	CategoryClothes  Category = "clothes"
	CategoryMedicine Category = "medicine"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryShopping, CategoryClothes, CategoryMedicine:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Urgency keeps the original Chinese UI values on the wire.
type Urgency string

const (
	UrgencyHigh   Urgency = "高"
	UrgencyMedium Urgency = "中"
	UrgencyLow    Urgency = "低"
)

// Rank orders urgencies for agenda sorting; unknown values sort last.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 0
	case UrgencyMedium:
		return 1
	case UrgencyLow:
		return 2
	}
	return 3
}

// Record is the single polymorphic entity behind reminders, the shopping
// list, clothing inventories and medicine schedules, discriminated by
// Category. Numeric medicine fields are stored as text like the legacy
// schema did; unparseable values are skipped by the stock engine rather
// than rejected.
type Record struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User     User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PersonID *uuid.UUID `gorm:"type:uuid;index" json:"person_id,omitempty"`
	Person   *Person    `gorm:"constraint:OnDelete:CASCADE" json:"person,omitempty"`

	Category Category `gorm:"size:20;not null;index:idx_records_category_status" json:"category"`
	Content  string   `gorm:"type:text;not null" json:"content"`
	Status   Status   `gorm:"size:20;not null;default:pending;index:idx_records_category_status" json:"status"`

	// general + shopping
	Date    *string  `gorm:"size:10" json:"date,omitempty"`
	Time    *string  `gorm:"size:5" json:"time,omitempty"`
	Urgency *Urgency `gorm:"size:10" json:"urgency,omitempty"`

	// shopping + clothes
	Quantity *string `gorm:"size:50" json:"quantity,omitempty"`
	Unit     *string `gorm:"size:50" json:"unit,omitempty"`
	Brand    *string `gorm:"size:100" json:"brand,omitempty"`

	// clothes
	Type  *string `gorm:"size:50" json:"type,omitempty"`
	Color *string `gorm:"size:50" json:"color,omitempty"`

	// medicine
	Frequency         *string `gorm:"size:20" json:"frequency,omitempty"`
	Dosage            *string `gorm:"size:20" json:"dosage,omitempty"`
	Style             *string `gorm:"size:50" json:"style,omitempty"`
	TotalQuantity     *string `gorm:"size:20" json:"total_quantity,omitempty"`
	StartDate         *string `gorm:"size:10" json:"start_date,omitempty"`
	RefillQuantity    *string `gorm:"size:20" json:"refill_quantity,omitempty"`
	ReminderThreshold *string `gorm:"size:20" json:"reminder_threshold,omitempty"`
	NeedsPurchase     bool    `gorm:"default:false" json:"needs_purchase"`

	// shopping rows generated from a medicine point back at it. The partial
	// unique index keeps at most one pending row per source medicine.
	SourceRecordID *uuid.UUID `gorm:"type:uuid;uniqueIndex:uniq_pending_shopping_source,where:status = 'pending'" json:"source_record_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Record) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

func parseIntField(s *string) (int, bool) {
	if s == nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// FrequencyPerDay parses the doses-per-day field.
func (r *Record) FrequencyPerDay() (int, bool) { return parseIntField(r.Frequency) }

// DosagePerIntake parses the units-per-dose field.
func (r *Record) DosagePerIntake() (int, bool) { return parseIntField(r.Dosage) }

// Stock parses the current stock field.
func (r *Record) Stock() (int, bool) { return parseIntField(r.TotalQuantity) }

// RefillAmount parses the refill quantity; a missing or malformed value
// refills zero units but the refill itself still succeeds.
func (r *Record) RefillAmount() int {
	v, ok := parseIntField(r.RefillQuantity)
	if !ok {
		return 0
	}
	return v
}

// Threshold parses the low-stock cutoff.
func (r *Record) Threshold() (int, bool) { return parseIntField(r.ReminderThreshold) }

// StartDay parses the consumption anchor date.
func (r *Record) StartDay() (time.Time, bool) {
	if r.StartDate == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*r.StartDate))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
