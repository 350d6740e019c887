package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// DefaultAuditLimit máximo de entradas por consulta si el filtro no indica otro.
const DefaultAuditLimit = 100

// AuditLogRepo log de auditoría sobre PostgreSQL.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador.
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create agrega una entrada.
func (r *AuditLogRepo) Create(ctx context.Context, l *entity.AuditLog) error {
	details := l.Details
	if len(details) == 0 {
		details = []byte("{}")
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO audit_logs (id, user_id, action, details, created_at) VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.UserID, l.Action, details, l.CreatedAt,
	)
	return mapError(err, "insert audit log")
}

// List aplica los filtros presentes y ordena por fecha descendente.
func (r *AuditLogRepo) List(ctx context.Context, f repository.AuditLogFilter) ([]*entity.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 || limit > DefaultAuditLimit {
		limit = DefaultAuditLimit
	}
	qb := psql.Select("id", "user_id", "action", "details", "created_at").
		From("audit_logs").
		OrderBy("created_at DESC").
		Limit(uint64(limit))
	if f.UserID != "" {
		qb = qb.Where(squirrel.Eq{"user_id": f.UserID})
	}
	if f.Action != "" {
		qb = qb.Where(squirrel.Eq{"action": f.Action})
	}
	if f.From != nil {
		qb = qb.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		qb = qb.Where(squirrel.LtOrEq{"created_at": *f.To})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list audit logs")
	}
	defer rows.Close()

	list := []*entity.AuditLog{}
	for rows.Next() {
		var l entity.AuditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Details, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
