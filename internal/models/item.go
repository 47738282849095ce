package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/apperrors"
)

// Item is something the tuckshop sells.
type Item struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name" example:"Meat pie"`
	Price       int64      `json:"price" db:"price" example:"500"` // minor units
	Description string     `json:"description,omitempty" db:"description"`
	ImageURL    string     `json:"imageUrl,omitempty" db:"image_url" example:"/static/item-images/meat-pie.png"`
	Category    *string    `json:"category,omitempty" db:"category" example:"snacks"`
	SchoolID    *uuid.UUID `json:"schoolId,omitempty" db:"school_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// ItemPatch is a partial update. A nil field is left unchanged.
type ItemPatch struct {
	Name        *string
	Price       *int64
	Description *string
	ImageURL    *string
	Category    *string
	SchoolID    *uuid.UUID
}

func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Description == nil &&
		p.ImageURL == nil && p.Category == nil && p.SchoolID == nil
}

func (p ItemPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperrors.Validation("name", "name must not be empty")
	}
	if p.Price != nil && *p.Price < 0 {
		return apperrors.Validation("price", "price must not be negative")
	}
	return nil
}

// ItemFilter narrows item listings.
type ItemFilter struct {
	Search   string
	Category string
	SchoolID *uuid.UUID
}
