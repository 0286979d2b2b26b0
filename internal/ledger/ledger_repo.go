package ledger

import (
	"context"
	"database/sql"
)

//go:generate mockgen -source=ledger_repo.go -destination=mock/ledger_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByEmployee(ctx context.Context, employeeID string) (*LeaveRecord, error)
	CreateRequests(ctx context.Context, requests []LeaveRequest) error
	// IncrementTakenWithinQuota bumps leaves_taken by delta only while the
	// result stays within quota, reporting whether the row was updated.
	IncrementTakenWithinQuota(ctx context.Context, employeeID string, delta, quota int) (bool, error)
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *repository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) (*LeaveRecord, error) {
	q := r.querier()

	var record LeaveRecord
	err := q.QueryRowContext(ctx, `
SELECT employee_id, leaves_taken
FROM leave_records
WHERE employee_id = $1
`, employeeID).Scan(&record.EmployeeID, &record.LeavesTaken)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
SELECT id, employee_id, type, date, reason, comments
FROM leave_requests
WHERE employee_id = $1
ORDER BY date ASC
`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var req LeaveRequest
		if err := rows.Scan(&req.ID, &req.EmployeeID, &req.Type, &req.Date, &req.Reason, &req.Comments); err != nil {
			return nil, err
		}
		record.LeaveRequests = append(record.LeaveRequests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *repository) CreateRequests(ctx context.Context, requests []LeaveRequest) error {
	q := r.querier()
	for _, req := range requests {
		_, err := q.ExecContext(ctx, `
INSERT INTO leave_requests (id, employee_id, type, date, reason, comments)
VALUES ($1, $2, $3, $4, $5, $6)
`, req.ID, req.EmployeeID, req.Type, req.Date, req.Reason, req.Comments)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) IncrementTakenWithinQuota(ctx context.Context, employeeID string, delta, quota int) (bool, error) {
	res, err := r.querier().ExecContext(ctx, `
UPDATE leave_records
SET leaves_taken = leaves_taken + $1, updated_at = NOW()
WHERE employee_id = $2 AND leaves_taken + $1 <= $3
`, delta, employeeID, quota)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
