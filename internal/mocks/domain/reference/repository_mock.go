package referencemock

import (
	context "context"

	reference "github.com/riskibarqy/fantasy-insights/internal/domain/reference"
	mock "github.com/stretchr/testify/mock"
)

// Repository is a mock type for the Repository type
type Repository struct {
	mock.Mock
}

// UpsertTeams provides a mock function with given fields: ctx, teams
func (_m *Repository) UpsertTeams(ctx context.Context, teams []reference.Team) error {
	ret := _m.Called(ctx, teams)

	if len(ret) == 0 {
		panic("no return value specified for UpsertTeams")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, []reference.Team) error); ok {
		r0 = rf(ctx, teams)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// UpsertPlayers provides a mock function with given fields: ctx, players
func (_m *Repository) UpsertPlayers(ctx context.Context, players []reference.Player) error {
	ret := _m.Called(ctx, players)

	if len(ret) == 0 {
		panic("no return value specified for UpsertPlayers")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, []reference.Player) error); ok {
		r0 = rf(ctx, players)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ListTeams provides a mock function with given fields: ctx
func (_m *Repository) ListTeams(ctx context.Context) ([]reference.Team, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListTeams")
	}

	var r0 []reference.Team
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]reference.Team, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []reference.Team); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]reference.Team)
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListPlayers provides a mock function with given fields: ctx
func (_m *Repository) ListPlayers(ctx context.Context) ([]reference.Player, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListPlayers")
	}

	var r0 []reference.Player
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]reference.Player, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []reference.Player); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]reference.Player)
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListPlayersByTeam provides a mock function with given fields: ctx, teamID
func (_m *Repository) ListPlayersByTeam(ctx context.Context, teamID int64) ([]reference.Player, error) {
	ret := _m.Called(ctx, teamID)

	if len(ret) == 0 {
		panic("no return value specified for ListPlayersByTeam")
	}

	var r0 []reference.Player
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, int64) ([]reference.Player, error)); ok {
		return rf(ctx, teamID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, int64) []reference.Player); ok {
		r0 = rf(ctx, teamID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]reference.Player)
	}

	if rf, ok := ret.Get(1).(func(context.Context, int64) error); ok {
		r1 = rf(ctx, teamID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListPlayerIDs provides a mock function with given fields: ctx
func (_m *Repository) ListPlayerIDs(ctx context.Context) ([]int64, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListPlayerIDs")
	}

	var r0 []int64
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]int64, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []int64); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]int64)
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
