package repository

import (
	"context"
	"errors"

	"github.com/docease/docease-api/internal/domain/schedule"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

var _ schedule.Repository = (*ScheduleRepository)(nil)

func (r *ScheduleRepository) Create(ctx context.Context, w *schedule.AvailabilityWindow) error {
	err := r.db.WithContext(ctx).Create(w).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return schedule.ErrDuplicateWindow
	}
	return err
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*schedule.AvailabilityWindow, error) {
	var w schedule.AvailabilityWindow
	err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, schedule.ErrWindowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *ScheduleRepository) FindByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day schedule.Weekday) (*schedule.AvailabilityWindow, error) {
	var w schedule.AvailabilityWindow
	err := r.db.WithContext(ctx).
		First(&w, "doctor_id = ? AND day = ?", doctorID, day).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, schedule.ErrWindowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *ScheduleRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*schedule.AvailabilityWindow, error) {
	var out []*schedule.AvailabilityWindow
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("day ASC").
		Find(&out).Error
	return out, err
}

func (r *ScheduleRepository) Update(ctx context.Context, id uuid.UUID, cmd *schedule.UpdateWindowCommand) (*schedule.AvailabilityWindow, error) {
	err := r.db.WithContext(ctx).
		Model(&schedule.AvailabilityWindow{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"day":        cmd.Day,
			"start_time": cmd.StartTime,
			"end_time":   cmd.EndTime,
		}).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) (*schedule.AvailabilityWindow, error) {
	w, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&schedule.AvailabilityWindow{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return w, nil
}

func (r *ScheduleRepository) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Delete(&schedule.AvailabilityWindow{}).Error
}
