package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/events"
	ledgererrors "github.com/AkshiGarg/nagarro-leave-manager/internal/ledger/errors"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/messaging/kafka"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// NewRequest describes one day to append to an employee's ledger.
type NewRequest struct {
	Type     string
	Date     time.Time
	Reason   string
	Comments string
}

///go:generate mockgen -source=ledger_service.go -destination=mock/ledger_service_mock.go -package=mock
type Service interface {
	// Find returns the employee's record, or ErrEmployeeNotFound.
	Find(ctx context.Context, employeeID string) (*LeaveRecord, error)
	// AppendAndIncrement appends the given requests and bumps leaves_taken
	// by leaveDelta in one transaction. The quota guard runs inside the
	// same UPDATE, so concurrent turns for one employee cannot overshoot.
	AppendAndIncrement(ctx context.Context, employeeID string, requests []NewRequest, leaveDelta int) (*LeaveRecord, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("ledger.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("ledger.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

// NewServiceWithOutbox also writes a leave-submitted outbox event in the
// same transaction as every append.
func NewServiceWithOutbox(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	s := NewService(db, repo, logger...).(*service)
	s.outbox = outbox
	return s
}

func (s *service) Find(ctx context.Context, employeeID string) (*LeaveRecord, error) {
	record, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("find leave record failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, err
	}
	if record == nil {
		return nil, ledgererrors.ErrEmployeeNotFound
	}
	return record, nil
}

func (s *service) AppendAndIncrement(ctx context.Context, employeeID string, requests []NewRequest, leaveDelta int) (*LeaveRecord, error) {
	if len(requests) == 0 {
		return nil, ledgererrors.ErrNoRequests
	}

	s.logger.Debug("append leave requests",
		zap.String("employee_id", employeeID),
		zap.Int("count", len(requests)),
		zap.Int("leave_delta", leaveDelta),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("append begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	record, err := qtx.FindByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("append lookup failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	if record == nil {
		return nil, ledgererrors.ErrEmployeeNotFound
	}

	if leaveDelta > 0 {
		ok, err := qtx.IncrementTakenWithinQuota(ctx, employeeID, leaveDelta, AnnualQuota)
		if err != nil {
			s.logger.Error("quota increment failed", zap.String("employee_id", employeeID), zap.Error(err))
			return nil, err
		}
		if !ok {
			s.logger.Warn("quota exceeded",
				zap.String("employee_id", employeeID),
				zap.Int("leaves_taken", record.LeavesTaken),
				zap.Int("leave_delta", leaveDelta),
			)
			return nil, ledgererrors.ErrQuotaExceeded
		}
	}

	rows := make([]LeaveRequest, 0, len(requests))
	for _, req := range requests {
		rows = append(rows, LeaveRequest{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			Type:       req.Type,
			Date:       req.Date,
			Reason:     req.Reason,
			Comments:   req.Comments,
		})
	}

	if err := qtx.CreateRequests(ctx, rows); err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn("duplicate leave request",
				zap.String("employee_id", employeeID),
			)
			return nil, ledgererrors.ErrDuplicateRequest
		}
		s.logger.Error("append persist failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	if s.outbox != nil {
		if err := s.writeOutboxEvent(ctx, tx, employeeID, requests); err != nil {
			s.logger.Error("append outbox write failed", zap.String("employee_id", employeeID), zap.Error(err))
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("append commit failed", zap.Error(err))
		return nil, err
	}

	record.LeavesTaken += leaveDelta
	record.LeaveRequests = append(record.LeaveRequests, rows...)

	s.logger.Info("leave requests appended",
		zap.String("employee_id", employeeID),
		zap.Int("count", len(rows)),
		zap.Int("leaves_taken", record.LeavesTaken),
	)

	return record, nil
}

func (s *service) writeOutboxEvent(ctx context.Context, tx *sql.Tx, employeeID string, requests []NewRequest) error {
	dates := make([]string, 0, len(requests))
	for _, req := range requests {
		dates = append(dates, req.Date.Format("2006-01-02"))
	}

	payload, err := json.Marshal(events.LeaveSubmittedEvent{
		EventType:   "leave_submitted",
		EmployeeID:  employeeID,
		RequestType: requests[0].Type,
		Dates:       dates,
		Reason:      requests[0].Reason,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:          uuid.New().String(),
		AggregateID: employeeID,
		EventType:   "leave_submitted",
		Topic:       events.LeaveSubmittedTopic,
		Payload:     payload,
		Status:      kafka.OutboxStatusPending,
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
