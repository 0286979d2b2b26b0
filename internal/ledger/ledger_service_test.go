package ledger_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/ledger"
	ledgererrors "github.com/AkshiGarg/nagarro-leave-manager/internal/ledger/errors"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

type fakeLedgerRepository struct {
	withTxFn           func(tx *sql.Tx) ledger.Repository
	findByEmployeeFn   func(ctx context.Context, employeeID string) (*ledger.LeaveRecord, error)
	createRequestsFn   func(ctx context.Context, requests []ledger.LeaveRequest) error
	incrementInQuotaFn func(ctx context.Context, employeeID string, delta, quota int) (bool, error)
}

func (f *fakeLedgerRepository) WithTx(tx *sql.Tx) ledger.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeLedgerRepository) FindByEmployee(ctx context.Context, employeeID string) (*ledger.LeaveRecord, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeLedgerRepository) CreateRequests(ctx context.Context, requests []ledger.LeaveRequest) error {
	if f.createRequestsFn != nil {
		return f.createRequestsFn(ctx, requests)
	}
	return nil
}

func (f *fakeLedgerRepository) IncrementTakenWithinQuota(ctx context.Context, employeeID string, delta, quota int) (bool, error) {
	if f.incrementInQuotaFn != nil {
		return f.incrementInQuotaFn(ctx, employeeID, delta, quota)
	}
	return true, nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id, r string) error { return nil }

type ledgerServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	repo    *fakeLedgerRepository
	outbox  *fakeOutboxRepository
	service ledger.Service
}

func setupLedgerServiceTest(t *testing.T) *ledgerServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := &fakeLedgerRepository{}
	outbox := &fakeOutboxRepository{}
	svc := ledger.NewServiceWithOutbox(db, repo, outbox)

	return &ledgerServiceDeps{db: db, sqlMock: sqlMock, repo: repo, outbox: outbox, service: svc}
}

func leaveDay(d int) time.Time {
	return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC)
}

func TestLedgerService_Find(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the record", func(t *testing.T) {
		deps := setupLedgerServiceTest(t)
		deps.repo.findByEmployeeFn = func(ctx context.Context, employeeID string) (*ledger.LeaveRecord, error) {
			assert.Equal(t, "E1", employeeID)
			return &ledger.LeaveRecord{EmployeeID: "E1", LeavesTaken: 3}, nil
		}

		record, err := deps.service.Find(ctx, "E1")

		assert.NoError(t, err)
		assert.Equal(t, 3, record.LeavesTaken)
		assert.Equal(t, 24, record.Remaining())
	})

	t.Run("missing record maps to not found", func(t *testing.T) {
		deps := setupLedgerServiceTest(t)
		deps.repo.findByEmployeeFn = func(ctx context.Context, employeeID string) (*ledger.LeaveRecord, error) {
			return nil, nil
		}

		_, err := deps.service.Find(ctx, "ghost")

		assert.ErrorIs(t, err, ledgererrors.ErrEmployeeNotFound)
	})
}

func TestLedgerService_AppendAndIncrement(t *testing.T) {
	ctx := context.Background()

	t.Run("appends and writes outbox in one transaction", func(t *testing.T) {
		deps := setupLedgerServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByEmployeeFn = func(ctx context.Context, employeeID string) (*ledger.LeaveRecord, error) {
			return &ledger.LeaveRecord{EmployeeID: "E1", LeavesTaken: 5}, nil
		}
		var inserted []ledger.LeaveRequest
		deps.repo.createRequestsFn = func(ctx context.Context, requests []ledger.LeaveRequest) error {
			inserted = requests
			return nil
		}

		record, err := deps.service.AppendAndIncrement(ctx, "E1", []ledger.NewRequest{
			{Type: ledger.RequestTypeLeave, Date: leaveDay(4), Reason: "personal", Comments: "none"},
		}, 1)

		assert.NoError(t, err)
		assert.Equal(t, 6, record.LeavesTaken)
		assert.Len(t, inserted, 1)
		assert.Equal(t, ledger.RequestTypeLeave, inserted[0].Type)
		assert.NotEqual(t, "", inserted[0].ID.String())
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "E1", deps.outbox.created[0].AggregateID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("quota guard rejects and rolls back", func(t *testing.T) {
		deps := setupLedgerServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findByEmployeeFn = func(ctx context.Context, employeeID string) (*ledger.LeaveRecord, error) {
			return &ledger.LeaveRecord{EmployeeID: "E1", LeavesTaken: 26}, nil
		}
		deps.repo.incrementInQuotaFn = func(ctx context.Context, employeeID string, delta, quota int) (bool, error) {
			assert.Equal(t, 3, delta)
			assert.Equal(t, ledger.AnnualQuota, quota)
			return false, nil
		}
		deps.repo.createRequestsFn = func(ctx context.Context, requests []ledger.LeaveRequest) error {
			t.Fatal("must not insert requests when the quota guard fails")
			return nil
		}

		_, err := deps.service.AppendAndIncrement(ctx, "E1", []ledger.NewRequest{
			{Type: ledger.RequestTypeLeave, Date: leaveDay(7)},
			{Type: ledger.RequestTypeLeave, Date: leaveDay(8)},
			{Type: ledger.RequestTypeLeave, Date: leaveDay(9)},
		}, 3)

		assert.ErrorIs(t, err, ledgererrors.ErrQuotaExceeded)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("zero delta skips the quota guard", func(t *testing.T) {
		deps := setupLedgerServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByEmployeeFn = func(ctx context.Context, employeeID string) (*ledger.LeaveRecord, error) {
			return &ledger.LeaveRecord{EmployeeID: "E1", LeavesTaken: ledger.AnnualQuota}, nil
		}
		deps.repo.incrementInQuotaFn = func(ctx context.Context, employeeID string, delta, quota int) (bool, error) {
			t.Fatal("quota guard must not run for delta 0")
			return false, nil
		}

		record, err := deps.service.AppendAndIncrement(ctx, "E1", []ledger.NewRequest{
			{Type: ledger.RequestTypeFlexible, Date: leaveDay(25), Reason: "Christmas"},
		}, 0)

		assert.NoError(t, err)
		assert.Equal(t, ledger.AnnualQuota, record.LeavesTaken)
	})

	t.Run("unknown employee", func(t *testing.T) {
		deps := setupLedgerServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findByEmployeeFn = func(ctx context.Context, employeeID string) (*ledger.LeaveRecord, error) {
			return nil, nil
		}

		_, err := deps.service.AppendAndIncrement(ctx, "ghost", []ledger.NewRequest{
			{Type: ledger.RequestTypeLeave, Date: leaveDay(4)},
		}, 1)

		assert.ErrorIs(t, err, ledgererrors.ErrEmployeeNotFound)
	})

	t.Run("empty request list is rejected", func(t *testing.T) {
		deps := setupLedgerServiceTest(t)

		_, err := deps.service.AppendAndIncrement(ctx, "E1", nil, 0)

		assert.ErrorIs(t, err, ledgererrors.ErrNoRequests)
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		deps := setupLedgerServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findByEmployeeFn = func(ctx context.Context, employeeID string) (*ledger.LeaveRecord, error) {
			return &ledger.LeaveRecord{EmployeeID: "E1"}, nil
		}
		deps.repo.createRequestsFn = func(ctx context.Context, requests []ledger.LeaveRequest) error {
			return errors.New("insert failed")
		}

		_, err := deps.service.AppendAndIncrement(ctx, "E1", []ledger.NewRequest{
			{Type: ledger.RequestTypeLeave, Date: leaveDay(4)},
		}, 1)

		assert.Error(t, err)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
