package identity

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"swiftpass/internal/student"
)

// RegisterInput is everything needed to create an account.
type RegisterInput struct {
	Email         string
	Password      string
	FullName      string
	StudentNumber string
	Course        string
	LabSchedule   *string
	IsAdmin       bool
}

// Service creates and verifies accounts. Registration writes the
// credential, the profile, and the initial QR payload in one transaction
// so a failed step leaves no partial account behind.
type Service struct {
	db       *sql.DB
	creds    *Store
	students *student.Repository
}

// NewService wires the credential store and the student repository.
func NewService(db *sql.DB, creds *Store, students *student.Repository) *Service {
	return &Service{db: db, creds: creds, students: students}
}

// Register creates the account and returns the new profile.
func (s *Service) Register(ctx context.Context, in RegisterInput) (student.Student, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return student.Student{}, err
	}
	defer tx.Rollback()

	profile := student.Student{
		ID:            uuid.NewString(),
		Email:         in.Email,
		FullName:      in.FullName,
		StudentNumber: in.StudentNumber,
		Course:        in.Course,
		LabSchedule:   in.LabSchedule,
		IsAdmin:       in.IsAdmin,
	}
	profile, err = s.students.CreateTx(ctx, tx, profile)
	if isUniqueViolation(err) {
		return student.Student{}, ErrEmailTaken
	}
	if err != nil {
		return student.Student{}, err
	}
	if err := s.creds.CreateTx(ctx, tx, profile.ID, in.Email, in.Password); err != nil {
		return student.Student{}, err
	}
	if err := s.students.UpsertQRTx(ctx, tx, profile.ID, profile.QRPayload()); err != nil {
		return student.Student{}, err
	}
	if err := tx.Commit(); err != nil {
		return student.Student{}, err
	}
	return profile, nil
}

// Login verifies credentials and returns the matching profile.
func (s *Service) Login(ctx context.Context, email, password string) (student.Student, error) {
	userID, err := s.creds.Verify(ctx, email, password)
	if err != nil {
		return student.Student{}, err
	}
	profile, err := s.students.GetByID(ctx, userID)
	if err != nil {
		return student.Student{}, err
	}
	if profile == nil {
		// Credential without a profile row; treat as a bad login rather
		// than leaking account state.
		return student.Student{}, ErrBadCredentials
	}
	return *profile, nil
}
