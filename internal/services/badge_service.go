package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/skip2/go-qrcode"
	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/models"
)

const badgeSize = 256

// BadgePayload is encoded into the QR badge scanned at the counter.
type BadgePayload struct {
	AccountID string `json:"accountId"`
	StudentID string `json:"studentId,omitempty"`
	Name      string `json:"name"`
	IssuedAt  int64  `json:"issuedAt"`
}

type BadgeService struct {
	now func() time.Time
}

func NewBadgeService() *BadgeService {
	return &BadgeService{now: time.Now}
}

// Code is the URL-safe string carried by the QR image.
func (s *BadgeService) Code(account *models.Account) (string, error) {
	payload := BadgePayload{
		AccountID: account.ID.String(),
		Name:      account.Name,
		IssuedAt:  s.now().Unix(),
	}
	if account.StudentID != nil {
		payload.StudentID = *account.StudentID
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// PNG renders the account's badge.
func (s *BadgeService) PNG(account *models.Account) ([]byte, error) {
	code, err := s.Code(account)
	if err != nil {
		return nil, apperrors.ErrInternal.Wrap(err)
	}

	png, err := qrcode.Encode(code, qrcode.Medium, badgeSize)
	if err != nil {
		return nil, apperrors.ErrInternal.Wrap(fmt.Errorf("encode badge: %w", err))
	}
	return png, nil
}

func DecodeBadge(code string) (BadgePayload, error) {
	var payload BadgePayload
	data, err := base64.URLEncoding.DecodeString(code)
	if err != nil {
		return payload, apperrors.Validation("code", "malformed badge code")
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, apperrors.Validation("code", "malformed badge code")
	}
	return payload, nil
}
