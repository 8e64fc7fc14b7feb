package leave

import (
	"time"

	"github.com/frahmantamala/projecthub/internal"
	leaveDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/leave"
)

const (
	TypeAnnual = "annual"
	TypeSick   = "sick"
	TypeUnpaid = "unpaid"
	TypeOther  = "other"

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	Types    = []string{TypeAnnual, TypeSick, TypeUnpaid, TypeOther}
	Statuses = []string{StatusPending, StatusApproved, StatusRejected}
)

type Leave struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"userId"`
	Type       string     `json:"type"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    time.Time  `json:"endDate"`
	Days       int        `json:"days"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	ReviewedBy *int64     `json:"reviewedBy"`
	ReviewNote string     `json:"reviewNote"`
	ReviewedAt *time.Time `json:"reviewedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CalendarDays counts both ends of the range.
func CalendarDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

var (
	ErrNotFound   = internal.NewNotFoundError("Leave request not found", internal.ErrCodeLeaveNotFound)
	ErrNotPending = internal.NewValidationError("Only pending leave requests can be changed", internal.ErrCodeInvalidStatus)
)

func ToDataModel(l *Leave) *leaveDatamodel.Leave {
	return &leaveDatamodel.Leave{
		ID:         l.ID,
		UserID:     l.UserID,
		Type:       l.Type,
		StartDate:  l.StartDate,
		EndDate:    l.EndDate,
		Reason:     l.Reason,
		Status:     l.Status,
		ReviewedBy: l.ReviewedBy,
		ReviewNote: l.ReviewNote,
		ReviewedAt: l.ReviewedAt,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func FromDataModel(l *leaveDatamodel.Leave) *Leave {
	return &Leave{
		ID:         l.ID,
		UserID:     l.UserID,
		Type:       l.Type,
		StartDate:  l.StartDate,
		EndDate:    l.EndDate,
		Days:       CalendarDays(l.StartDate, l.EndDate),
		Reason:     l.Reason,
		Status:     l.Status,
		ReviewedBy: l.ReviewedBy,
		ReviewNote: l.ReviewNote,
		ReviewedAt: l.ReviewedAt,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}
