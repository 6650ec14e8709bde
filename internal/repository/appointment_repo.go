package repository

import (
	"context"
	"errors"
	"time"

	"github.com/docease/docease-api/internal/domain/appointment"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

var _ appointment.Repository = (*AppointmentRepository)(nil)

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appointment.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Update("status", a.Status).Error
}

func (r *AppointmentRepository) UpdateSchedule(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"scheduled_at": a.ScheduledAt,
			"status":       a.Status,
		}).Error
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("scheduled_at ASC").
		Find(&out).Error
	return out, err
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("scheduled_at ASC").
		Find(&out).Error
	return out, err
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListQuery) ([]*appointment.Appointment, error) {
	tx := r.db.WithContext(ctx).Model(&appointment.Appointment{})
	if q.DoctorID != nil {
		tx = tx.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.PatientID != nil {
		tx = tx.Where("patient_id = ?", *q.PatientID)
	}
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}

	var out []*appointment.Appointment
	err := tx.Order("scheduled_at ASC").Find(&out).Error
	return out, err
}

func (r *AppointmentRepository) CountByStatus(ctx context.Context) (map[appointment.Status]int64, error) {
	var rows []struct {
		Status appointment.Status
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[appointment.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *AppointmentRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("doctor_id = ? OR patient_id = ?", userID, userID).
		Count(&count).Error
	return count, err
}

func (r *AppointmentRepository) MarkCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("status = ? AND scheduled_at < ?", appointment.StatusApproved, cutoff).
		Update("status", appointment.StatusCompleted)
	return res.RowsAffected, res.Error
}

func (r *AppointmentRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("doctor_id = ? OR patient_id = ?", userID, userID).
		Delete(&appointment.Appointment{}).Error
}
