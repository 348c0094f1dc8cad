package cohortmock

import (
	context "context"

	cohort "github.com/riskibarqy/fantasy-insights/internal/domain/cohort"
	mock "github.com/stretchr/testify/mock"
)

// Repository is a mock type for the Repository type
type Repository struct {
	mock.Mock
}

// SaveGameweek provides a mock function with given fields: ctx, batch
func (_m *Repository) SaveGameweek(ctx context.Context, batch cohort.GameweekBatch) error {
	ret := _m.Called(ctx, batch)

	if len(ret) == 0 {
		panic("no return value specified for SaveGameweek")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, cohort.GameweekBatch) error); ok {
		r0 = rf(ctx, batch)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetSummary provides a mock function with given fields: ctx, gameWeek
func (_m *Repository) GetSummary(ctx context.Context, gameWeek int) (cohort.GameweekSummary, bool, error) {
	ret := _m.Called(ctx, gameWeek)

	if len(ret) == 0 {
		panic("no return value specified for GetSummary")
	}

	var r0 cohort.GameweekSummary
	var r1 bool
	var r2 error
	if rf, ok := ret.Get(0).(func(context.Context, int) (cohort.GameweekSummary, bool, error)); ok {
		return rf(ctx, gameWeek)
	}
	if rf, ok := ret.Get(0).(func(context.Context, int) cohort.GameweekSummary); ok {
		r0 = rf(ctx, gameWeek)
	} else {
		r0 = ret.Get(0).(cohort.GameweekSummary)
	}

	if rf, ok := ret.Get(1).(func(context.Context, int) bool); ok {
		r1 = rf(ctx, gameWeek)
	} else {
		r1 = ret.Get(1).(bool)
	}

	if rf, ok := ret.Get(2).(func(context.Context, int) error); ok {
		r2 = rf(ctx, gameWeek)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// ListSummaries provides a mock function with given fields: ctx, fromGameWeek, toGameWeek
func (_m *Repository) ListSummaries(ctx context.Context, fromGameWeek int, toGameWeek int) ([]cohort.GameweekSummary, error) {
	ret := _m.Called(ctx, fromGameWeek, toGameWeek)

	if len(ret) == 0 {
		panic("no return value specified for ListSummaries")
	}

	var r0 []cohort.GameweekSummary
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, int, int) ([]cohort.GameweekSummary, error)); ok {
		return rf(ctx, fromGameWeek, toGameWeek)
	}
	if rf, ok := ret.Get(0).(func(context.Context, int, int) []cohort.GameweekSummary); ok {
		r0 = rf(ctx, fromGameWeek, toGameWeek)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]cohort.GameweekSummary)
	}

	if rf, ok := ret.Get(1).(func(context.Context, int, int) error); ok {
		r1 = rf(ctx, fromGameWeek, toGameWeek)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewRepository creates a new instance of Repository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *Repository {
	mock := &Repository{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
