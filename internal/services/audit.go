package services

import (
	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/models"
	"go.uber.org/zap"
)

const (
	AuditTransaction = "TRANSACTION"
	AuditError       = "ERROR"
	AuditOperation   = "OPERATION"
)

// AuditLogger writes one structured entry per balance change attempt and
// per administrative operation.
type AuditLogger struct {
	logger *zap.Logger
}

func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.Named("audit")}
}

func (a *AuditLogger) LogTransaction(t *models.Transaction) {
	a.logger.Info("audit",
		zap.String("event_type", AuditTransaction),
		zap.String("transaction_id", t.ID.String()),
		zap.String("account_id", t.AccountID.String()),
		zap.String("actor_id", t.CreatedBy.String()),
		zap.String("kind", string(t.Kind)),
		zap.Int64("amount", t.Amount),
		zap.Int64("balance_after", t.BalanceAfter),
		zap.String("status", string(t.Status)),
	)
}

func (a *AuditLogger) LogError(accountID, actorID uuid.UUID, kind models.TransactionKind, amount int64, err error) {
	appErr := apperrors.From(err)
	fields := []zap.Field{
		zap.String("event_type", AuditError),
		zap.String("account_id", accountID.String()),
		zap.String("actor_id", actorID.String()),
		zap.String("kind", string(kind)),
		zap.Int64("amount", amount),
		zap.String("status", "FAILED"),
		zap.String("code", appErr.Code),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}
	a.logger.Warn("audit", fields...)
}

func (a *AuditLogger) LogOperation(actorID uuid.UUID, operation string, targetID uuid.UUID) {
	a.logger.Info("audit",
		zap.String("event_type", AuditOperation),
		zap.String("operation", operation),
		zap.String("actor_id", actorID.String()),
		zap.String("target_id", targetID.String()),
		zap.String("status", "SUCCESS"),
	)
}
