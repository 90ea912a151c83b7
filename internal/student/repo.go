package student

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"swiftpass/internal/auth"
)

// Repository persists student profiles and their derived QR payloads.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const studentColumns = `id, email, full_name, student_number, course, lab_schedule, is_admin, created_at`

func scanStudent(row interface{ Scan(...any) error }) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.Email, &s.FullName, &s.StudentNumber, &s.Course, &s.LabSchedule, &s.IsAdmin, &s.CreatedAt)
	return s, err
}

// GetByID returns a single student, or nil when no row exists.
func (r *Repository) GetByID(ctx context.Context, id string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+`
		FROM students WHERE id = $1
	`, id)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// GetByStudentNumber resolves the institutional student number printed in
// QR payloads back to the profile row. Returns nil when no row exists.
func (r *Repository) GetByStudentNumber(ctx context.Context, number string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+`
		FROM students WHERE student_number = $1
	`, number)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// List returns all students, newest first.
func (r *Repository) List(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+studentColumns+`
		FROM students
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// CreateTx inserts a profile row inside the caller's transaction.
func (r *Repository) CreateTx(ctx context.Context, tx *sql.Tx, s Student) (Student, error) {
	row := tx.QueryRowContext(ctx, `
		INSERT INTO students (id, email, full_name, student_number, course, lab_schedule, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, s.ID, s.Email, s.FullName, s.StudentNumber, s.Course, s.LabSchedule, s.IsAdmin)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Student{}, err
	}
	return s, nil
}

// UpsertQRTx overwrites the materialized QR payload for a student. The
// payload is a cache of profile fields and is never authoritative.
func (r *Repository) UpsertQRTx(ctx context.Context, tx *sql.Tx, studentID string, payload QRPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO qr_codes (student_id, qr_data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (student_id) DO UPDATE SET
			qr_data = EXCLUDED.qr_data,
			updated_at = NOW()
	`, studentID, data)
	return err
}

// UpdateProfile applies the present fields, re-reads the row, and
// overwrites the QR payload, all in one transaction. The profile write and
// the QR sync succeed or fail together. Returns ErrNotFound for an
// unknown id and ErrNoFields when nothing was supplied.
func (r *Repository) UpdateProfile(ctx context.Context, id string, fields UpdateFields) (Student, error) {
	sets := []string{}
	args := []any{id}
	if fields.FullName != nil {
		args = append(args, *fields.FullName)
		sets = append(sets, "full_name = $"+itoa(len(args)))
	}
	if fields.Course != nil {
		args = append(args, *fields.Course)
		sets = append(sets, "course = $"+itoa(len(args)))
	}
	if fields.LabSchedule != nil {
		args = append(args, *fields.LabSchedule)
		sets = append(sets, "lab_schedule = $"+itoa(len(args)))
	}
	if len(sets) == 0 {
		return Student{}, ErrNoFields
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Student{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE students SET `+joinClauses(sets, ", ")+`
		WHERE id = $1
		RETURNING `+studentColumns+`
	`, args...)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, err
	}

	if err := r.UpsertQRTx(ctx, tx, s.ID, s.QRPayload()); err != nil {
		return Student{}, err
	}
	if err := tx.Commit(); err != nil {
		return Student{}, err
	}
	return s, nil
}

// Resolve implements auth.StudentResolver with the gate's projection.
func (r *Repository) Resolve(ctx context.Context, userID string) (*auth.Identity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, student_number
		FROM students WHERE id = $1
	`, userID)
	var ident auth.Identity
	if err := row.Scan(&ident.ID, &ident.Email, &ident.FullName, &ident.StudentNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ident, nil
}

// IsAdmin implements auth.AdminChecker.
func (r *Repository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT is_admin FROM students WHERE id = $1`, userID)
	var admin bool
	if err := row.Scan(&admin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return admin, nil
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }

func joinClauses(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += sep + parts[i]
	}
	return out
}
