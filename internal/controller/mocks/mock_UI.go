package mocks

import (
	context "context"

	model "apicheck.dev/pkg/apicheck/internal/model"
	mock "github.com/stretchr/testify/mock"
)

// MockUI is a mock type for the UI type
type MockUI struct {
	mock.Mock
}

func (_m *MockUI) returnError(name string, ret mock.Arguments) error {
	if len(ret) == 0 {
		panic("no return value specified for " + name)
	}

	return ret.Error(0)
}

// DisplayDifferences provides a mock function with given fields: ctx, report
func (_m *MockUI) DisplayDifferences(ctx context.Context, report model.Report) error {
	return _m.returnError("DisplayDifferences", _m.Called(ctx, report))
}

// DisplayType provides a mock function with given fields: ctx, t
func (_m *MockUI) DisplayType(ctx context.Context, t *model.TypeDescriptor) error {
	return _m.returnError("DisplayType", _m.Called(ctx, t))
}

// DisplayMember provides a mock function with given fields: ctx, className, member
func (_m *MockUI) DisplayMember(ctx context.Context, className string, member *model.MemberDescriptor) error {
	return _m.returnError("DisplayMember", _m.Called(ctx, className, member))
}

// DisplayNotFound provides a mock function with given fields: ctx, reference, err
func (_m *MockUI) DisplayNotFound(ctx context.Context, reference string, err error) error {
	return _m.returnError("DisplayNotFound", _m.Called(ctx, reference, err))
}

// DisplaySnapshotInfo provides a mock function with given fields: ctx, path, snapshot
func (_m *MockUI) DisplaySnapshotInfo(ctx context.Context, path model.Path, snapshot *model.Snapshot) error {
	return _m.returnError("DisplaySnapshotInfo", _m.Called(ctx, path, snapshot))
}

// DisplayCodes provides a mock function with given fields: ctx, codes
func (_m *MockUI) DisplayCodes(ctx context.Context, codes []model.Code) error {
	return _m.returnError("DisplayCodes", _m.Called(ctx, codes))
}

// NewMockUI creates a new instance of MockUI. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	mock := &MockUI{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
