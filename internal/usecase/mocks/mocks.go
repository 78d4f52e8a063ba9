package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.LoanAccount

	CreateFunc           func(ctx context.Context, account *domain.LoanAccount) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.LoanAccount, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanAccount, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateAPRFunc        func(ctx context.Context, tx usecase.Transaction, id string, apr decimal.Decimal, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.LoanAccount),
	}
}

// Seed stores an account directly, bypassing any override.
func (m *MockAccountRepository) Seed(account *domain.LoanAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.LoanAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.LoanAccount) error {
	return m.Create(ctx, account)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.LoanAccount, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanAccount, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.Version++
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) UpdateAPR(ctx context.Context, tx usecase.Transaction, id string, apr decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateAPRFunc != nil {
		return m.UpdateAPRFunc(ctx, tx, id, apr, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.APR = apr
		acc.Version++
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.LoanAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.LoanAccount
	for _, acc := range m.accounts {
		if acc.OwnerID == ownerID {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) ListWithPositiveBalance(ctx context.Context, limit, offset int) ([]*domain.LoanAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.LoanAccount
	for _, acc := range m.accounts {
		if acc.Balance.IsPositive() {
			accounts = append(accounts, acc)
		}
	}
	if offset >= len(accounts) {
		return nil, nil
	}
	return accounts[offset:], nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.LoanAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.LoanAccount
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries []*domain.LedgerEntry

	CreateFunc func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, accountID string, since *time.Time, limit, offset int) ([]*domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.LoanAccountID != accountID {
			continue
		}
		if since != nil && e.OccurredOn.Before(*since) {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (m *MockEntryRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.LoanAccountID == accountID {
			sum = sum.Add(e.SignedAmount())
		}
	}
	return sum, nil
}

// MockRewardRepository is a mock implementation of RewardRepository.
type MockRewardRepository struct {
	mu          sync.RWMutex
	counters    map[string]*domain.RepaymentCounter
	adjustments []*domain.RewardAdjustment

	CreateAdjustmentFunc func(ctx context.Context, tx usecase.Transaction, adjustment *domain.RewardAdjustment) error
}

func NewMockRewardRepository() *MockRewardRepository {
	return &MockRewardRepository{
		counters: make(map[string]*domain.RepaymentCounter),
	}
}

func (m *MockRewardRepository) GetCounter(ctx context.Context, accountID string) (*domain.RepaymentCounter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.counters[accountID]; ok {
		counter := *c
		return &counter, nil
	}
	return &domain.RepaymentCounter{LoanAccountID: accountID}, nil
}

func (m *MockRewardRepository) GetCounterForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.RepaymentCounter, error) {
	return m.GetCounter(ctx, accountID)
}

func (m *MockRewardRepository) UpsertCounter(ctx context.Context, tx usecase.Transaction, counter *domain.RepaymentCounter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *counter
	m.counters[counter.LoanAccountID] = &c
	return nil
}

func (m *MockRewardRepository) CreateAdjustment(ctx context.Context, tx usecase.Transaction, adjustment *domain.RewardAdjustment) error {
	if m.CreateAdjustmentFunc != nil {
		return m.CreateAdjustmentFunc(ctx, tx, adjustment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments = append(m.adjustments, adjustment)
	return nil
}

func (m *MockRewardRepository) ListAdjustments(ctx context.Context, accountID string, limit, offset int) ([]*domain.RewardAdjustment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var adjustments []*domain.RewardAdjustment
	for _, a := range m.adjustments {
		if a.LoanAccountID == accountID {
			adjustments = append(adjustments, a)
		}
	}
	return adjustments, nil
}

// MockAccrualRepository is a mock implementation of AccrualRepository.
type MockAccrualRepository struct {
	mu       sync.RWMutex
	accruals map[string]*domain.InterestAccrual
}

func NewMockAccrualRepository() *MockAccrualRepository {
	return &MockAccrualRepository{
		accruals: make(map[string]*domain.InterestAccrual),
	}
}

func accrualKey(accountID string, date time.Time) string {
	return fmt.Sprintf("%s:%s", accountID, date.Format(time.DateOnly))
}

func (m *MockAccrualRepository) Create(ctx context.Context, tx usecase.Transaction, accrual *domain.InterestAccrual) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := accrualKey(accrual.LoanAccountID, accrual.AccrualDate)
	if _, ok := m.accruals[key]; ok {
		return domain.ErrAlreadyAccrued
	}
	m.accruals[key] = accrual
	return nil
}

func (m *MockAccrualRepository) Exists(ctx context.Context, accountID string, accrualDate time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.accruals[accrualKey(accountID, accrualDate)]
	return ok, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
		}
		if len(events) >= limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns all recorded events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return fmt.Sprintf("id-%04d", m.next)
}

// MockCache is an in-memory cache mock.
type MockCache struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// MockRetrier runs the operation once without retries.
type MockRetrier struct{}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}
