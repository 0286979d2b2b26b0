package ledger

import (
	"time"

	"github.com/google/uuid"
)

// AnnualQuota is the number of leave days an employee may take per year.
const AnnualQuota = 27

// RequestTypeLeave is the only request type counted against the quota.
const (
	RequestTypeLeave    = "leave"
	RequestTypeFlexible = "flexible"
)

type LeaveRecord struct {
	EmployeeID    string         `gorm:"type:varchar(40);primaryKey" json:"employee_id"`
	LeavesTaken   int            `gorm:"not null;default:0" json:"leaves_taken"`
	LeaveRequests []LeaveRequest `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"leave_requests"`
	CreatedAt     time.Time      `json:"-"`
	UpdatedAt     time.Time      `json:"-"`
}

type LeaveRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	EmployeeID string    `gorm:"type:varchar(40);not null;index;uniqueIndex:uq_leave_requests_employee_date_type,priority:1" json:"employee_id"`
	Type       string    `gorm:"type:varchar(30);not null;uniqueIndex:uq_leave_requests_employee_date_type,priority:3" json:"type"`
	Date       time.Time `gorm:"type:date;not null;uniqueIndex:uq_leave_requests_employee_date_type,priority:2" json:"date"`
	Reason     string    `gorm:"type:text" json:"reason"`
	Comments   string    `gorm:"type:text" json:"comments"`
	CreatedAt  time.Time `json:"-"`
}

// Remaining reports how many quota-counted days the employee still has.
func (r *LeaveRecord) Remaining() int {
	remaining := AnnualQuota - r.LeavesTaken
	if remaining < 0 {
		return 0
	}
	return remaining
}
