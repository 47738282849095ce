package models

import (
	"time"

	"github.com/google/uuid"
)

type School struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" example:"Greenfield Academy"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
