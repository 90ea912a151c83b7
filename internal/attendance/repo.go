package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const recordColumns = `id, student_id, time_in, time_out, lab_schedule, created_at`

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.TimeIn, &rec.TimeOut, &rec.LabSchedule, &rec.CreatedAt)
	return rec, err
}

// TimeIn opens a record for the student. The existence check, the
// open-session check, and the insert run in one transaction so a crash
// between steps cannot leave a validated-but-orphaned write. Returns
// ErrNotFound for an unknown student and ErrOpenSession when the student
// already has a record with no time-out.
func (r *Repository) TimeIn(ctx context.Context, studentID, labSchedule string) (Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback()

	var exists bool
	row := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, studentID)
	if err := row.Scan(&exists); err != nil {
		return Record{}, err
	}
	if !exists {
		return Record{}, ErrNotFound
	}

	var open bool
	row = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM attendance WHERE student_id = $1 AND time_out IS NULL)
	`, studentID)
	if err := row.Scan(&open); err != nil {
		return Record{}, err
	}
	if open {
		return Record{}, ErrOpenSession
	}

	rec := Record{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		LabSchedule: labSchedule,
	}
	row = tx.QueryRowContext(ctx, `
		INSERT INTO attendance (id, student_id, time_in, lab_schedule)
		VALUES ($1, $2, NOW(), $3)
		RETURNING time_in, created_at
	`, rec.ID, rec.StudentID, rec.LabSchedule)
	if err := row.Scan(&rec.TimeIn, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	if err := tx.Commit(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// SetTimeOut stamps time_out with the current instant. Repeated calls
// overwrite the previous stamp. Returns ErrNotFound for an unknown id.
func (r *Repository) SetTimeOut(ctx context.Context, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance SET time_out = NOW()
		WHERE id = $1
		RETURNING `+recordColumns+`
	`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// ListForStudent returns a student's records, newest time-in first.
func (r *Repository) ListForStudent(ctx context.Context, studentID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance
		WHERE student_id = $1
		ORDER BY time_in DESC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// ListForDate returns records with time-in inside [start, end), joined
// with the student's display fields, oldest first.
func (r *Repository) ListForDate(ctx context.Context, start, end time.Time) ([]DayRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.student_id, a.time_in, a.time_out, a.lab_schedule, a.created_at,
		       s.full_name, s.student_number, s.course
		FROM attendance a
		JOIN students s ON s.id = a.student_id
		WHERE a.time_in >= $1 AND a.time_in < $2
		ORDER BY a.time_in ASC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []DayRecord
	for rows.Next() {
		var rec DayRecord
		err := rows.Scan(&rec.ID, &rec.StudentID, &rec.TimeIn, &rec.TimeOut, &rec.LabSchedule, &rec.CreatedAt,
			&rec.FullName, &rec.StudentNumber, &rec.Course)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
