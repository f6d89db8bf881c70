package staff_test

import (
	"context"
	"database/sql"
	"testing"

	"govpay/internal/staff"
	stafferrors "govpay/internal/staff/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

type fakeStaffRepo struct {
	createFn     func(ctx context.Context, st *staff.Staff) error
	findAllFn    func(ctx context.Context) ([]staff.Staff, error)
	findByIDFn   func(ctx context.Context, id string) (*staff.Staff, error)
	findActiveFn func(ctx context.Context, departmentID string) ([]staff.Staff, error)
	updateFn     func(ctx context.Context, st *staff.Staff) error
	deleteFn     func(ctx context.Context, id string) error
}

func (f *fakeStaffRepo) WithTx(_ *sql.Tx) staff.Repository { return f }

func (f *fakeStaffRepo) Create(ctx context.Context, st *staff.Staff) error {
	return f.createFn(ctx, st)
}

func (f *fakeStaffRepo) FindAll(ctx context.Context) ([]staff.Staff, error) {
	return f.findAllFn(ctx)
}

func (f *fakeStaffRepo) FindByID(ctx context.Context, id string) (*staff.Staff, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeStaffRepo) FindActive(ctx context.Context, departmentID string) ([]staff.Staff, error) {
	return f.findActiveFn(ctx, departmentID)
}

func (f *fakeStaffRepo) Update(ctx context.Context, st *staff.Staff) error {
	return f.updateFn(ctx, st)
}

func (f *fakeStaffRepo) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

type fakeCounterRepo struct {
	next int64
}

func (f *fakeCounterRepo) GetNextValue(_ context.Context, _ string) (int64, error) {
	f.next++
	return f.next, nil
}

func newStaffService(t *testing.T, repo *fakeStaffRepo) staff.Service {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectRollback()

	return staff.NewService(db, repo, &fakeCounterRepo{next: 41}, nil)
}

func TestStaffService_Create(t *testing.T) {
	var created *staff.Staff
	repo := &fakeStaffRepo{
		createFn: func(_ context.Context, st *staff.Staff) error {
			created = st
			return nil
		},
	}
	svc := newStaffService(t, repo)

	resp, err := svc.Create(context.Background(), staff.CreateStaffRequest{
		FullName:   "Adaeze Okonkwo",
		Email:      "adaeze.okonkwo@example.gov",
		GradeLevel: 9,
		Step:       4,
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, "ST-000042", resp.StaffNumber)
	assert.Equal(t, staff.StatusActive, resp.Status)
	assert.Equal(t, 9, resp.GradeLevel)
}

func TestStaffService_Create_GradeStepBounds(t *testing.T) {
	tests := []struct {
		name       string
		gradeLevel int
		step       int
	}{
		{"grade level zero", 0, 1},
		{"grade level above range", 18, 1},
		{"step zero", 5, 0},
		{"step above range", 5, 16},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repoTouched := false
			repo := &fakeStaffRepo{
				createFn: func(_ context.Context, _ *staff.Staff) error {
					repoTouched = true
					return nil
				},
			}
			svc := newStaffService(t, repo)

			_, err := svc.Create(context.Background(), staff.CreateStaffRequest{
				FullName:   "Out Of Range",
				Email:      "oor@example.gov",
				GradeLevel: tc.gradeLevel,
				Step:       tc.step,
			})

			assert.ErrorIs(t, err, stafferrors.ErrInvalidGradeStep)
			assert.False(t, repoTouched)
		})
	}
}

func TestStaffService_Create_DuplicateEmail(t *testing.T) {
	repo := &fakeStaffRepo{
		createFn: func(_ context.Context, _ *staff.Staff) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_staff_email"}
		},
	}
	svc := newStaffService(t, repo)

	_, err := svc.Create(context.Background(), staff.CreateStaffRequest{
		FullName:   "Dupe Mail",
		Email:      "taken@example.gov",
		GradeLevel: 3,
		Step:       2,
	})

	assert.ErrorIs(t, err, stafferrors.ErrStaffEmailTaken)
}

func TestStaffService_GetByID_MalformedID(t *testing.T) {
	svc := newStaffService(t, &fakeStaffRepo{})

	_, err := svc.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, stafferrors.ErrInvalidStaffID)
}

func TestStaffService_Update_Status(t *testing.T) {
	id := uuid.New()
	repo := &fakeStaffRepo{
		findByIDFn: func(_ context.Context, reqID string) (*staff.Staff, error) {
			assert.Equal(t, id.String(), reqID)
			return &staff.Staff{
				ID:          id,
				StaffNumber: "ST-000007",
				FullName:    "Chika Eze",
				Email:       "chika.eze@example.gov",
				GradeLevel:  12,
				Step:        6,
				Status:      staff.StatusActive,
			}, nil
		},
		updateFn: func(_ context.Context, _ *staff.Staff) error { return nil },
	}
	svc := newStaffService(t, repo)

	resp, err := svc.Update(context.Background(), id.String(), staff.UpdateStaffRequest{
		FullName:   "Chika Eze",
		Email:      "chika.eze@example.gov",
		GradeLevel: 12,
		Step:       6,
		Status:     staff.StatusRetired,
	})

	assert.NoError(t, err)
	assert.Equal(t, staff.StatusRetired, resp.Status)
	assert.Equal(t, "ST-000007", resp.StaffNumber)
}
