package service

import (
	"context"
	"sync"
	"time"

	"github.com/docease/docease-api/internal/domain"
	"github.com/docease/docease-api/internal/domain/appointment"
	"github.com/docease/docease-api/internal/domain/schedule"
	"github.com/docease/docease-api/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// In-memory repository fakes backing the service tests. They mirror the
// contracts documented on the repository interfaces, including the sentinel
// errors for absent rows.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	users, _ := r.ListByRole(context.Background(), role)
	return int64(len(users)), nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeScheduleRepo struct {
	mu      sync.Mutex
	windows map[uuid.UUID]*schedule.AvailabilityWindow
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{windows: make(map[uuid.UUID]*schedule.AvailabilityWindow)}
}

func (r *fakeScheduleRepo) Create(_ context.Context, w *schedule.AvailabilityWindow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.windows {
		if existing.DoctorID == w.DoctorID && existing.Day == w.Day {
			return schedule.ErrDuplicateWindow
		}
	}
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	cp := *w
	r.windows[w.ID] = &cp
	return nil
}

func (r *fakeScheduleRepo) GetByID(_ context.Context, id uuid.UUID) (*schedule.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[id]
	if !ok {
		return nil, schedule.ErrWindowNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeScheduleRepo) FindByDoctorAndDay(_ context.Context, doctorID uuid.UUID, day schedule.Weekday) (*schedule.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.windows {
		if w.DoctorID == doctorID && w.Day == day {
			cp := *w
			return &cp, nil
		}
	}
	return nil, schedule.ErrWindowNotFound
}

func (r *fakeScheduleRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*schedule.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*schedule.AvailabilityWindow
	for _, w := range r.windows {
		if w.DoctorID == doctorID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) Update(_ context.Context, id uuid.UUID, cmd *schedule.UpdateWindowCommand) (*schedule.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[id]
	if !ok {
		return nil, schedule.ErrWindowNotFound
	}
	w.Day = cmd.Day
	w.StartTime = cmd.StartTime
	w.EndTime = cmd.EndTime
	cp := *w
	return &cp, nil
}

func (r *fakeScheduleRepo) Delete(_ context.Context, id uuid.UUID) (*schedule.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[id]
	if !ok {
		return nil, schedule.ErrWindowNotFound
	}
	delete(r.windows, id)
	return w, nil
}

func (r *fakeScheduleRepo) DeleteByDoctor(_ context.Context, doctorID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, w := range r.windows {
		if w.DoctorID == doctorID {
			delete(r.windows, id)
		}
	}
	return nil
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*appointment.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*appointment.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appointments[a.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	stored.Status = a.Status
	return nil
}

func (r *fakeAppointmentRepo) UpdateSchedule(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appointments[a.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	stored.ScheduledAt = a.ScheduledAt
	stored.Status = a.Status
	return nil
}

func (r *fakeAppointmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	id := patientID
	return r.List(context.Background(), &appointment.ListQuery{PatientID: &id})
}

func (r *fakeAppointmentRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	id := doctorID
	return r.List(context.Background(), &appointment.ListQuery{DoctorID: &id})
}

func (r *fakeAppointmentRepo) List(_ context.Context, q *appointment.ListQuery) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.appointments {
		if q.DoctorID != nil && a.DoctorID != *q.DoctorID {
			continue
		}
		if q.PatientID != nil && a.PatientID != *q.PatientID {
			continue
		}
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) CountByStatus(_ context.Context) (map[appointment.Status]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[appointment.Status]int64)
	for _, a := range r.appointments {
		out[a.Status]++
	}
	return out, nil
}

func (r *fakeAppointmentRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.appointments {
		if a.DoctorID == userID || a.PatientID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeAppointmentRepo) MarkCompletedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.appointments {
		if a.Status == appointment.StatusApproved && a.ScheduledAt.Before(cutoff) {
			a.Status = appointment.StatusCompleted
			n++
		}
	}
	return n, nil
}

func (r *fakeAppointmentRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.appointments {
		if a.DoctorID == userID || a.PatientID == userID {
			delete(r.appointments, id)
		}
	}
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func testCollector() *metrics.Collector {
	return metrics.NewCollectorWith(prometheus.NewRegistry(), "test")
}

func testAuditService() *AuditService {
	return NewAuditService(&fakeAuditRepo{}, testCollector(), zap.NewNop())
}
