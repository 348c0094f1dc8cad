package identitymock

import (
	context "context"

	identity "github.com/riskibarqy/fantasy-insights/internal/domain/identity"
	mock "github.com/stretchr/testify/mock"
)

// Repository is a mock type for the Repository type
type Repository struct {
	mock.Mock
}

// UpsertTeamMappings provides a mock function with given fields: ctx, mappings
func (_m *Repository) UpsertTeamMappings(ctx context.Context, mappings []identity.TeamMapping) error {
	ret := _m.Called(ctx, mappings)

	if len(ret) == 0 {
		panic("no return value specified for UpsertTeamMappings")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, []identity.TeamMapping) error); ok {
		r0 = rf(ctx, mappings)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ListTeamMappings provides a mock function with given fields: ctx
func (_m *Repository) ListTeamMappings(ctx context.Context) ([]identity.TeamMapping, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListTeamMappings")
	}

	var r0 []identity.TeamMapping
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]identity.TeamMapping, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []identity.TeamMapping); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]identity.TeamMapping)
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpsertPlayerMappings provides a mock function with given fields: ctx, mappings
func (_m *Repository) UpsertPlayerMappings(ctx context.Context, mappings []identity.PlayerMapping) error {
	ret := _m.Called(ctx, mappings)

	if len(ret) == 0 {
		panic("no return value specified for UpsertPlayerMappings")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, []identity.PlayerMapping) error); ok {
		r0 = rf(ctx, mappings)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ListPlayerMappings provides a mock function with given fields: ctx
func (_m *Repository) ListPlayerMappings(ctx context.Context) ([]identity.PlayerMapping, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListPlayerMappings")
	}

	var r0 []identity.PlayerMapping
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]identity.PlayerMapping, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []identity.PlayerMapping); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]identity.PlayerMapping)
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
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
