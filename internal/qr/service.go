package qr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	qrcode "github.com/skip2/go-qrcode"

	"swiftpass/internal/attendance"
	"swiftpass/internal/student"
)

var ErrMalformedPayload = errors.New("malformed qr payload")

const imageSize = 256

// Code is a rendered QR image with the payload it encodes. Image is a
// base64 PNG data URL ready for an <img> tag.
type Code struct {
	Image   string            `json:"qrCode"`
	Payload student.QRPayload `json:"studentData"`
}

type directory interface {
	GetByID(ctx context.Context, id string) (*student.Student, error)
	GetByStudentNumber(ctx context.Context, number string) (*student.Student, error)
}

type ledger interface {
	TimeIn(ctx context.Context, studentID, labSchedule string) (attendance.Record, error)
}

// Service renders profiles into scannable codes and turns scanned
// payloads back into attendance records.
type Service struct {
	students directory
	ledger   ledger
}

// NewService wires the directory and the attendance ledger.
func NewService(students directory, ledger ledger) *Service {
	return &Service{students: students, ledger: ledger}
}

// Generate reads the profile and renders its payload as a QR image.
func (s *Service) Generate(ctx context.Context, studentID string) (Code, error) {
	st, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return Code{}, err
	}
	if st == nil {
		return Code{}, student.ErrNotFound
	}
	payload := st.QRPayload()
	data, err := json.Marshal(payload)
	if err != nil {
		return Code{}, err
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, imageSize)
	if err != nil {
		return Code{}, err
	}
	return Code{
		Image:   "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		Payload: payload,
	}, nil
}

// Scan parses a scanned payload and opens an attendance record through
// the same ledger path as a direct time-in, so the student-existence and
// open-session checks apply equally here.
func (s *Service) Scan(ctx context.Context, raw string) (attendance.Record, error) {
	var payload student.QRPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return attendance.Record{}, ErrMalformedPayload
	}
	if payload.StudentNumber == "" {
		return attendance.Record{}, ErrMalformedPayload
	}
	st, err := s.students.GetByStudentNumber(ctx, payload.StudentNumber)
	if err != nil {
		return attendance.Record{}, err
	}
	if st == nil {
		return attendance.Record{}, student.ErrNotFound
	}
	return s.ledger.TimeIn(ctx, st.ID, payload.LabSchedule)
}
