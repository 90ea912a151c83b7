package student

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeRepo applies partial updates and re-derives the QR payload the way
// the Postgres repository does inside its transaction.
type fakeRepo struct {
	students map[string]*Student
	qr       map[string]QRPayload
}

func newFakeRepo(students ...Student) *fakeRepo {
	f := &fakeRepo{students: make(map[string]*Student), qr: make(map[string]QRPayload)}
	for i := range students {
		s := students[i]
		f.students[s.ID] = &s
		f.qr[s.ID] = s.QRPayload()
	}
	return f
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, nil
	}
	dup := *s
	return &dup, nil
}

func (f *fakeRepo) List(_ context.Context) ([]Student, error) {
	var res []Student
	for _, s := range f.students {
		res = append(res, *s)
	}
	return res, nil
}

func (f *fakeRepo) UpdateProfile(_ context.Context, id string, fields UpdateFields) (Student, error) {
	if fields.FullName == nil && fields.Course == nil && fields.LabSchedule == nil {
		return Student{}, ErrNoFields
	}
	s, ok := f.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	if fields.FullName != nil {
		s.FullName = *fields.FullName
	}
	if fields.Course != nil {
		s.Course = *fields.Course
	}
	if fields.LabSchedule != nil {
		s.LabSchedule = fields.LabSchedule
	}
	f.qr[id] = s.QRPayload()
	return *s, nil
}

func strptr(s string) *string { return &s }

func sample() Student {
	return Student{
		ID:            "u1",
		Email:         "ada@lab.edu",
		FullName:      "Ada Lovelace",
		StudentNumber: "2021-001",
		Course:        "BSCS",
		LabSchedule:   strptr("MWF 9-11"),
		CreatedAt:     time.Now(),
	}
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()
	svc := NewService(newFakeRepo())
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestUpdateOnlyCourse(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo(sample())
	svc := NewService(repo)

	got, err := svc.Update(context.Background(), "u1", UpdateFields{Course: strptr("BSIT")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Course != "BSIT" {
		t.Errorf("course: got %q, want BSIT", got.Course)
	}
	if got.FullName != "Ada Lovelace" {
		t.Errorf("full name changed: got %q", got.FullName)
	}
	if got.LabSchedule == nil || *got.LabSchedule != "MWF 9-11" {
		t.Errorf("lab schedule changed: got %v", got.LabSchedule)
	}
	// The materialized payload follows the profile.
	if payload := repo.qr["u1"]; payload.Course != "BSIT" {
		t.Errorf("qr payload course: got %q, want BSIT", payload.Course)
	}
}

func TestUpdateNoFieldsReturnsCurrentProfile(t *testing.T) {
	t.Parallel()
	svc := NewService(newFakeRepo(sample()))
	got, err := svc.Update(context.Background(), "u1", UpdateFields{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.FullName != "Ada Lovelace" {
		t.Errorf("got %q, want unchanged profile", got.FullName)
	}
}

func TestUpdateUnknownStudent(t *testing.T) {
	t.Parallel()
	svc := NewService(newFakeRepo())
	_, err := svc.Update(context.Background(), "missing", UpdateFields{Course: strptr("BSIT")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestListEmptyIsNotNil(t *testing.T) {
	t.Parallel()
	svc := NewService(newFakeRepo())
	students, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if students == nil {
		t.Error("got nil slice, want empty slice")
	}
}

func TestQRPayloadDerivation(t *testing.T) {
	t.Parallel()
	s := sample()
	p := s.QRPayload()
	if p.StudentNumber != "2021-001" || p.FullName != "Ada Lovelace" || p.Course != "BSCS" || p.LabSchedule != "MWF 9-11" {
		t.Errorf("payload %+v does not match profile", p)
	}

	s.LabSchedule = nil
	if p := s.QRPayload(); p.LabSchedule != "" {
		t.Errorf("nil schedule: got %q, want empty", p.LabSchedule)
	}
}
