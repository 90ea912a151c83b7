package student

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("student not found")
	ErrNoFields = errors.New("no fields to update")
)

// Student is a registered profile. The id doubles as the identity-store
// subject embedded in session tokens.
type Student struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	StudentNumber string    `json:"student_id"`
	Course        string    `json:"course"`
	LabSchedule   *string   `json:"lab_schedule,omitempty"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
}

// QRPayload is the snapshot of profile fields encoded into the scannable
// image and cached in qr_codes. The studentId key carries the
// institutional student number, not the row id.
type QRPayload struct {
	StudentNumber string `json:"studentId"`
	FullName      string `json:"fullName"`
	Course        string `json:"course"`
	LabSchedule   string `json:"labSchedule"`
}

// QRPayload derives the scan payload from the profile.
func (s Student) QRPayload() QRPayload {
	p := QRPayload{
		StudentNumber: s.StudentNumber,
		FullName:      s.FullName,
		Course:        s.Course,
	}
	if s.LabSchedule != nil {
		p.LabSchedule = *s.LabSchedule
	}
	return p
}

// UpdateFields carries a partial profile update; nil means leave untouched.
type UpdateFields struct {
	FullName    *string `json:"fullName"`
	Course      *string `json:"course"`
	LabSchedule *string `json:"labSchedule"`
}

type repository interface {
	GetByID(ctx context.Context, id string) (*Student, error)
	List(ctx context.Context) ([]Student, error)
	UpdateProfile(ctx context.Context, id string, fields UpdateFields) (Student, error)
}

// Service exposes the student directory.
type Service struct {
	repo repository
}

// NewService creates a service backed by a repository.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// Get fetches one profile.
func (s *Service) Get(ctx context.Context, id string) (Student, error) {
	if id == "" {
		return Student{}, ErrNotFound
	}
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if st == nil {
		return Student{}, ErrNotFound
	}
	return *st, nil
}

// Update applies a partial profile update and re-syncs the QR payload.
// Absent fields are left untouched.
func (s *Service) Update(ctx context.Context, id string, fields UpdateFields) (Student, error) {
	st, err := s.repo.UpdateProfile(ctx, id, fields)
	if errors.Is(err, ErrNoFields) {
		// Nothing to write; behave as a read so PUT with an empty body
		// returns the current profile.
		return s.Get(ctx, id)
	}
	return st, err
}

// List returns every profile, newest first. Admin-only at the route level.
func (s *Service) List(ctx context.Context) ([]Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []Student{}
	}
	return students, nil
}
