package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeRepo mimics the Postgres repository's contract in memory.
type fakeRepo struct {
	students map[string]bool
	records  map[string]*Record
}

func newFakeRepo(studentIDs ...string) *fakeRepo {
	students := make(map[string]bool)
	for _, id := range studentIDs {
		students[id] = true
	}
	return &fakeRepo{students: students, records: make(map[string]*Record)}
}

func (f *fakeRepo) TimeIn(_ context.Context, studentID, labSchedule string) (Record, error) {
	if !f.students[studentID] {
		return Record{}, ErrNotFound
	}
	for _, rec := range f.records {
		if rec.StudentID == studentID && rec.TimeOut == nil {
			return Record{}, ErrOpenSession
		}
	}
	rec := Record{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		TimeIn:      time.Now(),
		LabSchedule: labSchedule,
		CreatedAt:   time.Now(),
	}
	f.records[rec.ID] = &rec
	return rec, nil
}

func (f *fakeRepo) SetTimeOut(_ context.Context, id string) (Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	now := time.Now()
	rec.TimeOut = &now
	return *rec, nil
}

func (f *fakeRepo) ListForStudent(_ context.Context, studentID string) ([]Record, error) {
	var res []Record
	for _, rec := range f.records {
		if rec.StudentID == studentID {
			res = append(res, *rec)
		}
	}
	return res, nil
}

func (f *fakeRepo) ListForDate(_ context.Context, start, end time.Time) ([]DayRecord, error) {
	var res []DayRecord
	for _, rec := range f.records {
		if !rec.TimeIn.Before(start) && rec.TimeIn.Before(end) {
			res = append(res, DayRecord{Record: *rec})
		}
	}
	return res, nil
}

func TestTimeInUnknownStudent(t *testing.T) {
	t.Parallel()
	svc := NewService(newFakeRepo())
	if _, err := svc.TimeIn(context.Background(), "nobody", "MWF 9-11"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestTimeInEmptyStudentID(t *testing.T) {
	t.Parallel()
	svc := NewService(newFakeRepo())
	if _, err := svc.TimeIn(context.Background(), "", ""); !errors.Is(err, ErrNoStudent) {
		t.Errorf("got %v, want ErrNoStudent", err)
	}
}

func TestTimeInOpenSessionConflict(t *testing.T) {
	t.Parallel()
	svc := NewService(newFakeRepo("s1"))
	if _, err := svc.TimeIn(context.Background(), "s1", "MWF 9-11"); err != nil {
		t.Fatalf("first time-in: %v", err)
	}
	if _, err := svc.TimeIn(context.Background(), "s1", "MWF 9-11"); !errors.Is(err, ErrOpenSession) {
		t.Errorf("second time-in: got %v, want ErrOpenSession", err)
	}
}

func TestTimeOutTwiceOverwrites(t *testing.T) {
	t.Parallel()
	svc := NewService(newFakeRepo("s1"))
	rec, err := svc.TimeIn(context.Background(), "s1", "")
	if err != nil {
		t.Fatalf("time-in: %v", err)
	}

	first, err := svc.TimeOut(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("first time-out: %v", err)
	}
	if first.TimeOut == nil {
		t.Fatal("first time-out: TimeOut still nil")
	}
	if first.TimeOut.Before(first.TimeIn) {
		t.Errorf("time-out %v before time-in %v", first.TimeOut, first.TimeIn)
	}

	second, err := svc.TimeOut(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("second time-out: %v", err)
	}
	if second.TimeOut.Before(*first.TimeOut) {
		t.Errorf("second stamp %v did not advance past %v", second.TimeOut, first.TimeOut)
	}
}

func TestTimeOutUnknownRecord(t *testing.T) {
	t.Parallel()
	svc := NewService(newFakeRepo())
	if _, err := svc.TimeOut(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestListForDateBadDate(t *testing.T) {
	t.Parallel()
	svc := NewService(newFakeRepo())
	if _, err := svc.ListForDate(context.Background(), "31-12-2025"); !errors.Is(err, ErrBadDate) {
		t.Errorf("got %v, want ErrBadDate", err)
	}
}

func TestListForStudentEmptyIsNotNil(t *testing.T) {
	t.Parallel()
	svc := NewService(newFakeRepo("s1"))
	recs, err := svc.ListForStudent(context.Background(), "s1")
	if err != nil {
		t.Fatalf("ListForStudent: %v", err)
	}
	if recs == nil {
		t.Error("got nil slice, want empty slice")
	}
}

func TestDayBounds(t *testing.T) {
	t.Parallel()
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)
	start, end := DayBounds(day)

	inWindow := func(ts time.Time) bool {
		return !ts.Before(start) && ts.Before(end)
	}

	midnight := day
	lastMilli := time.Date(2025, 3, 14, 23, 59, 59, 999_000_000, time.Local)
	nextMidnight := time.Date(2025, 3, 15, 0, 0, 0, 0, time.Local)

	if !inWindow(midnight) {
		t.Errorf("midnight %v excluded from [%v, %v)", midnight, start, end)
	}
	if !inWindow(lastMilli) {
		t.Errorf("23:59:59.999 %v excluded from [%v, %v)", lastMilli, start, end)
	}
	if inWindow(nextMidnight) {
		t.Errorf("next midnight %v included in [%v, %v)", nextMidnight, start, end)
	}
}

func TestDayBoundsSpanFiltersRecords(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo("s1")
	in := time.Date(2025, 3, 14, 23, 59, 59, 999_000_000, time.Local)
	repo.records["r1"] = &Record{ID: "r1", StudentID: "s1", TimeIn: in}
	repo.records["r2"] = &Record{ID: "r2", StudentID: "s1", TimeIn: in.Add(time.Millisecond)}

	svc := NewService(repo)
	recs, err := svc.ListForDate(context.Background(), "2025-03-14")
	if err != nil {
		t.Fatalf("ListForDate: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "r1" {
		t.Errorf("got %d records %+v, want just r1", len(recs), recs)
	}
}
