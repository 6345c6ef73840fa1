package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Person is a household member records can be attached to (clothes, medicine).
// Names are unique per owning user, not globally.
type Person struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_person_name_per_user" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:uniq_person_name_per_user" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Person) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
