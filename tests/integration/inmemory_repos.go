package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"reimbursement-hub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.PasswordHash = passwordHash
	return nil
}

// --- In-Memory Request Repo ---

type inMemoryRequestRepo struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*domain.Request
}

func newInMemoryRequestRepo() *inMemoryRequestRepo {
	return &inMemoryRequestRepo{requests: make(map[uuid.UUID]*domain.Request)}
}

func (r *inMemoryRequestRepo) Create(ctx context.Context, req *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *inMemoryRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *inMemoryRequestRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Request, error) {
	// Row locking is approximated by the transactor's global mutex.
	return r.GetByID(ctx, id)
}

func (r *inMemoryRequestRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.RequestStatus, reviewerID *uuid.UUID, processedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return fmt.Errorf("request %s not found", id)
	}
	if req.Status != domain.RequestStatusPending {
		return fmt.Errorf("request %s is no longer pending", id)
	}
	req.Status = status
	req.ReviewerID = reviewerID
	req.ProcessedAt = &processedAt
	return nil
}

func (r *inMemoryRequestRepo) list(filter func(*domain.Request) bool) []domain.Request {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Request, 0)
	for _, req := range r.requests {
		if filter(req) {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *inMemoryRequestRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Request, error) {
	return r.list(func(req *domain.Request) bool { return req.OwnerID == ownerID }), nil
}

func (r *inMemoryRequestRepo) ListAll(ctx context.Context) ([]domain.Request, error) {
	return r.list(func(*domain.Request) bool { return true }), nil
}

func (r *inMemoryRequestRepo) ListPending(ctx context.Context) ([]domain.Request, error) {
	return r.list(func(req *domain.Request) bool { return req.Status == domain.RequestStatusPending }), nil
}

func (r *inMemoryRequestRepo) ListProcessed(ctx context.Context) ([]domain.Request, error) {
	return r.list(func(req *domain.Request) bool { return req.Status != domain.RequestStatusPending }), nil
}

// --- In-Memory Fund Repo ---

type inMemoryFundRepo struct {
	mu      sync.RWMutex
	balance decimal.Decimal
}

func newInMemoryFundRepo() *inMemoryFundRepo {
	return &inMemoryFundRepo{balance: decimal.Zero}
}

func (r *inMemoryFundRepo) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.balance, nil
}

func (r *inMemoryFundRepo) SetBalance(ctx context.Context, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balance = amount
	return nil
}

func (r *inMemoryFundRepo) Adjust(ctx context.Context, tx pgx.Tx, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balance = r.balance.Add(delta)
	return nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.RWMutex
	records []domain.AuditRecord
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, rec *domain.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *rec)
	return nil
}

func (r *inMemoryAuditRepo) List(ctx context.Context) ([]domain.AuditRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AuditRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *inMemoryAuditRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes all transitions behind one mutex, the
// in-memory stand-in for the row locks the database takes with FOR UPDATE.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &serialTx{release: &t.mu}, nil
}

// serialTx holds the transactor mutex until Commit or Rollback. The done
// flag keeps the deferred Rollback after a Commit from double-unlocking.
type serialTx struct {
	release *sync.Mutex
	done    bool
}

func (t *serialTx) Commit(ctx context.Context) error {
	if !t.done {
		t.done = true
		t.release.Unlock()
	}
	return nil
}

func (t *serialTx) Rollback(ctx context.Context) error {
	if !t.done {
		t.done = true
		t.release.Unlock()
	}
	return nil
}

func (t *serialTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *serialTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *serialTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *serialTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *serialTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *serialTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *serialTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *serialTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *serialTx) Conn() *pgx.Conn { return nil }
