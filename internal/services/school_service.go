package services

import (
	"context"
	"errors"
	"strings"

	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/auth"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/store"
)

type SchoolService struct {
	schools SchoolRepository
	audit   *AuditLogger
}

func NewSchoolService(schools SchoolRepository, audit *AuditLogger) *SchoolService {
	return &SchoolService{schools: schools, audit: audit}
}

func (s *SchoolService) Create(ctx context.Context, actor auth.Principal, name string) (*models.School, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.Validation("name", "name is required")
	}

	school, err := s.schools.Create(ctx, name)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperrors.ErrDuplicateSchool
	}
	if err != nil {
		return nil, translate(err, apperrors.ErrSchoolNotFound)
	}
	s.audit.LogOperation(actor.AccountID, "SCHOOL_CREATED", school.ID)
	return school, nil
}
