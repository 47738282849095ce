package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/auth"
	"github.com/tuckshop/backend/internal/models"
)

type ItemService struct {
	items   ItemRepository
	schools SchoolRepository
	audit   *AuditLogger
}

func NewItemService(items ItemRepository, schools SchoolRepository, audit *AuditLogger) *ItemService {
	return &ItemService{items: items, schools: schools, audit: audit}
}

func (s *ItemService) Get(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, translate(err, apperrors.ErrItemNotFound)
	}
	return item, nil
}

func (s *ItemService) Create(ctx context.Context, actor auth.Principal, item *models.Item) (*models.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, apperrors.Validation("name", "name is required")
	}
	if item.Price < 0 {
		return nil, apperrors.Validation("price", "price must not be negative")
	}
	if err := s.checkSchool(ctx, item.SchoolID); err != nil {
		return nil, err
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, translate(err, apperrors.ErrItemNotFound)
	}
	s.audit.LogOperation(actor.AccountID, "ITEM_CREATED", item.ID)
	return item, nil
}

func (s *ItemService) Update(ctx context.Context, actor auth.Principal, id uuid.UUID, patch models.ItemPatch) (*models.Item, error) {
	if patch.Empty() {
		return nil, apperrors.Validation("body", "at least one field must be provided")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkSchool(ctx, patch.SchoolID); err != nil {
		return nil, err
	}

	item, err := s.items.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err, apperrors.ErrItemNotFound)
	}
	s.audit.LogOperation(actor.AccountID, "ITEM_UPDATED", id)
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return translate(err, apperrors.ErrItemNotFound)
	}
	s.audit.LogOperation(actor.AccountID, "ITEM_DELETED", id)
	return nil
}

func (s *ItemService) checkSchool(ctx context.Context, schoolID *uuid.UUID) error {
	if schoolID == nil {
		return nil
	}
	_, err := s.schools.Get(ctx, *schoolID)
	if err == nil {
		return nil
	}
	err = translate(err, apperrors.ErrSchoolNotFound)
	if errors.Is(err, apperrors.ErrSchoolNotFound) {
		return apperrors.Validation("schoolId", "schoolId must reference an existing school")
	}
	return err
}
