package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// UserRepo usuarios en memoria; el email es único sin distinguir mayúsculas.
type UserRepo struct{ s *Store }

// NewUserRepository construye el repo.
func NewUserRepository(s *Store) *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) emailTaken(email, exceptID string) bool {
	for id, u := range r.s.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(u.Email, "") {
		return domain.ErrEmailAlreadyExists
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return nil
	}
	if r.emailTaken(u.Email, u.ID) {
		return domain.ErrEmailAlreadyExists
	}
	cur.Name, cur.Email, cur.BusinessName, cur.Role, cur.UpdatedAt = u.Name, u.Email, u.BusinessName, u.Role, u.UpdatedAt
	r.s.users[u.ID] = cur
	return nil
}

func (r *UserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.PasswordHash = hash
		u.UpdatedAt = time.Now().UTC()
		r.s.users[id] = u
	}
	return nil
}

func (r *UserRepo) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.IsDeleted = true
		u.UpdatedAt = time.Now().UTC()
		r.s.users[id] = u
	}
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.User{}
	for _, u := range r.s.users {
		cp := u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AuditLogRepo log de auditoría en memoria.
type AuditLogRepo struct{ s *Store }

// NewAuditLogRepository construye el repo.
func NewAuditLogRepository(s *Store) *AuditLogRepo { return &AuditLogRepo{s: s} }

func (r *AuditLogRepo) Create(_ context.Context, l *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, *l)
	return nil
}

func (r *AuditLogRepo) List(_ context.Context, f repository.AuditLogFilter) ([]*entity.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	out := []*entity.AuditLog{}
	for _, l := range r.s.audit {
		switch {
		case f.UserID != "" && l.UserID != f.UserID:
			continue
		case f.Action != "" && l.Action != f.Action:
			continue
		case f.From != nil && l.CreatedAt.Before(*f.From):
			continue
		case f.To != nil && l.CreatedAt.After(*f.To):
			continue
		}
		cp := l
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// StatsRepo agregados en memoria.
type StatsRepo struct{ s *Store }

// NewStatsRepository construye el repo.
func NewStatsRepository(s *Store) *StatsRepo { return &StatsRepo{s: s} }

func (r *StatsRepo) CountUsers(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, u := range r.s.users {
		if !u.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (r *StatsRepo) CountProducts(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, p := range r.s.products {
		if !p.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (r *StatsRepo) TotalStock(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, p := range r.s.products {
		if !p.IsDeleted {
			n += p.Quantity
		}
	}
	return n, nil
}

func (r *StatsRepo) CountMovements(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.movements)), nil
}
