package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// AuditLogLimit máximo de entradas devueltas por consulta.
const AuditLogLimit = 100

// AuditUseCase registra y consulta el log de auditoría.
type AuditUseCase struct {
	repo repository.AuditLogRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewAuditUseCase construye el caso de uso. log nil = sin logs.
func NewAuditUseCase(repo repository.AuditLogRepository, log *logger.Logger) *AuditUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditUseCase{repo: repo, log: log.Component("audit"), now: func() time.Time { return time.Now().UTC() }}
}

// Record agrega una entrada. Un fallo al auditar no revierte la acción ya aplicada: se registra en el log.
func (uc *AuditUseCase) Record(ctx context.Context, userID, action string, details map[string]any) {
	raw, err := json.Marshal(details)
	if err != nil {
		raw = json.RawMessage(`{}`)
	}
	entry := &entity.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Details:   raw,
		CreatedAt: uc.now(),
	}
	if err := uc.repo.Create(ctx, entry); err != nil {
		uc.log.Warn().Err(err).Str("action", action).Str("user_id", userID).Msg("no se pudo registrar auditoría")
	}
}

// List devuelve las entradas más recientes primero (máximo AuditLogLimit).
func (uc *AuditUseCase) List(ctx context.Context, q dto.AuditLogQuery) ([]dto.AuditLogResponse, error) {
	filter := repository.AuditLogFilter{
		UserID: strings.TrimSpace(q.UserID),
		Action: strings.TrimSpace(q.Action),
		Limit:  AuditLogLimit,
	}
	var err error
	if filter.From, err = parseQueryTime(q.From, false); err != nil {
		return nil, err
	}
	if filter.To, err = parseQueryTime(q.To, true); err != nil {
		return nil, err
	}
	logs, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.FromAuditLogs(logs), nil
}

// parseQueryTime acepta RFC3339 o fecha sola; con endOfDay la fecha sola cubre el día completo.
func parseQueryTime(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
