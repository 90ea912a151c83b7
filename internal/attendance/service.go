package attendance

import (
	"context"
	"errors"
	"time"

	"swiftpass/internal/metrics"
)

var (
	ErrNotFound    = errors.New("attendance record not found")
	ErrOpenSession = errors.New("student already has an open attendance record")
	ErrBadDate     = errors.New("invalid date, expected YYYY-MM-DD")
	ErrNoStudent   = errors.New("student id required")
)

// Record is one attendance event. It is open while TimeOut is nil and
// closed once set; there is no transition back to open.
type Record struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"student_id"`
	TimeIn      time.Time  `json:"time_in"`
	TimeOut     *time.Time `json:"time_out"`
	LabSchedule string     `json:"lab_schedule"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DayRecord is a record joined with the student's display fields for the
// per-date report.
type DayRecord struct {
	Record
	FullName      string `json:"full_name"`
	StudentNumber string `json:"student_number"`
	Course        string `json:"course"`
}

type repository interface {
	TimeIn(ctx context.Context, studentID, labSchedule string) (Record, error)
	SetTimeOut(ctx context.Context, id string) (Record, error)
	ListForStudent(ctx context.Context, studentID string) ([]Record, error)
	ListForDate(ctx context.Context, start, end time.Time) ([]DayRecord, error)
}

// Service is the attendance ledger.
type Service struct {
	repo repository
}

// NewService creates a service backed by a repository.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// TimeIn opens a record for the student at the current instant.
func (s *Service) TimeIn(ctx context.Context, studentID, labSchedule string) (Record, error) {
	if studentID == "" {
		return Record{}, ErrNoStudent
	}
	rec, err := s.repo.TimeIn(ctx, studentID, labSchedule)
	if err != nil {
		return Record{}, err
	}
	metrics.AttendanceRecorded.Inc()
	return rec, nil
}

// TimeOut closes the identified record. A second call overwrites the
// earlier stamp rather than failing.
func (s *Service) TimeOut(ctx context.Context, id string) (Record, error) {
	if id == "" {
		return Record{}, ErrNotFound
	}
	return s.repo.SetTimeOut(ctx, id)
}

// ListForStudent returns a student's history, newest first. Both the
// attendance and the QR route trees expose this one query.
func (s *Service) ListForStudent(ctx context.Context, studentID string) ([]Record, error) {
	if studentID == "" {
		return nil, ErrNoStudent
	}
	recs, err := s.repo.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

// ListForDate returns the day's records joined with student fields,
// oldest first. The date parses as YYYY-MM-DD in the server's zone.
func (s *Service) ListForDate(ctx context.Context, date string) ([]DayRecord, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, ErrBadDate
	}
	start, end := DayBounds(day)
	recs, err := s.repo.ListForDate(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []DayRecord{}
	}
	return recs, nil
}

// DayBounds returns the half-open interval [midnight, next midnight) for
// the given day. With >= start AND < end this admits a time-in at exactly
// midnight and at 23:59:59.999..., and excludes the next day's midnight.
func DayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
