// Package punch implements the employee clock session lifecycle:
// OPEN → CLOSED, with no re-opening and an idempotent auto-close path.
package punch

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dealerops/internal/apperr"
	"dealerops/internal/model"
)

var validMethods = map[string]bool{
	model.PunchOutManual:    true,
	model.PunchOutAutoClose: true,
	model.PunchOutAdmin:     true,
}

// Machine drives punch record transitions.
type Machine struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMachine returns a Machine writing through db.
func NewMachine(db *gorm.DB) *Machine {
	return &Machine{db: db, now: time.Now}
}

// WithClock overrides the wall-clock source for tests.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

// lockUser takes an exclusive row lock on the employee's user row so
// the open-session count and the insert are serialized per employee.
// SQLite has no row locks; its single-writer transaction model already
// serializes these, so the clause is only added on postgres.
func (m *Machine) lockUser(tx *gorm.DB, userID uint) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	var user model.User
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error
}

// ClockIn opens a new session for the employee. An existing open
// record conflicts: at most one open punch per employee.
func (m *Machine) ClockIn(userID, tenantID uint) (*model.PunchRecord, error) {
	var record model.PunchRecord
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := m.lockUser(tx, userID); err != nil {
			return err
		}

		var open int64
		err := tx.Model(&model.PunchRecord{}).
			Where("user_id = ? AND punch_out_at IS NULL", userID).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return apperr.ErrConflictingState
		}
		record = model.PunchRecord{
			UserID:    userID,
			TenantID:  tenantID,
			PunchInAt: m.now(),
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ClockOut closes the employee's open session with the given method.
// No open session conflicts; an unknown method is a validation error.
func (m *Machine) ClockOut(userID uint, method string) (*model.PunchRecord, error) {
	if !validMethods[method] {
		return nil, &apperr.ValidationError{
			Rule:    "punch_out_method",
			Message: "unknown punch-out method: " + method,
		}
	}

	var record model.PunchRecord
	err := m.db.Where("user_id = ? AND punch_out_at IS NULL", userID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrConflictingState
	}
	if err != nil {
		return nil, err
	}

	out := m.now()
	// Conditional update: only rows still open transition, so two
	// concurrent closers cannot both win.
	res := m.db.Model(&model.PunchRecord{}).
		Where("id = ? AND punch_out_at IS NULL", record.ID).
		Updates(map[string]interface{}{
			"punch_out_at":     out,
			"punch_out_method": method,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrConflictingState
	}
	record.PunchOutAt = &out
	record.PunchOutMethod = method
	return &record, nil
}

// AutoClose force-closes a stale open record with the auto_close
// method. Idempotent: an already-closed record is returned unchanged,
// never an error, so concurrent sweep workers are safe.
func (m *Machine) AutoClose(recordID uint) (*model.PunchRecord, error) {
	out := m.now()
	res := m.db.Model(&model.PunchRecord{}).
		Where("id = ? AND punch_out_at IS NULL", recordID).
		Updates(map[string]interface{}{
			"punch_out_at":     out,
			"punch_out_method": model.PunchOutAutoClose,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	var record model.PunchRecord
	err := m.db.First(&record, recordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// StaleOpenRecords lists open records whose clock-in is older than the
// staleness threshold, for the sweep to close.
func (m *Machine) StaleOpenRecords(threshold time.Duration) ([]model.PunchRecord, error) {
	var records []model.PunchRecord
	cutoff := m.now().Add(-threshold)
	err := m.db.Where("punch_out_at IS NULL AND punch_in_at < ?", cutoff).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
