package mocks

import (
	model "apicheck.dev/pkg/apicheck/internal/model"
	mock "github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockSnapshotStore is a mock type for the SnapshotStore type
type MockSnapshotStore struct {
	mock.Mock
}

// Load provides a mock function with given fields: path
func (_m *MockSnapshotStore) Load(path model.Path) (*model.Snapshot, error) {
	ret := _m.Called(path)

	if len(ret) == 0 {
		panic("no return value specified for Load")
	}

	var r0 *model.Snapshot
	if v := ret.Get(0); v != nil {
		r0 = v.(*model.Snapshot)
	}

	return r0, ret.Error(1)
}

// Save provides a mock function with given fields: path, snapshot
func (_m *MockSnapshotStore) Save(path model.Path, snapshot *model.Snapshot) error {
	ret := _m.Called(path, snapshot)

	if len(ret) == 0 {
		panic("no return value specified for Save")
	}

	return ret.Error(0)
}

// NewMockSnapshotStore creates a new instance of MockSnapshotStore and asserts its expectations on cleanup.
func NewMockSnapshotStore(t testingT) *MockSnapshotStore {
	mock := &MockSnapshotStore{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockDifferenceSource is a mock type for the DifferenceSource type
type MockDifferenceSource struct {
	mock.Mock
}

// Read provides a mock function with given fields: path
func (_m *MockDifferenceSource) Read(path model.Path) ([]model.DifferenceRecord, error) {
	ret := _m.Called(path)

	if len(ret) == 0 {
		panic("no return value specified for Read")
	}

	var r0 []model.DifferenceRecord
	if v := ret.Get(0); v != nil {
		r0 = v.([]model.DifferenceRecord)
	}

	return r0, ret.Error(1)
}

// NewMockDifferenceSource creates a new instance of MockDifferenceSource and asserts its expectations on cleanup.
func NewMockDifferenceSource(t testingT) *MockDifferenceSource {
	mock := &MockDifferenceSource{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockReportStore is a mock type for the ReportStore type
type MockReportStore struct {
	mock.Mock
}

// SaveText provides a mock function with given fields: path, records
func (_m *MockReportStore) SaveText(path model.Path, records []model.DifferenceRecord) error {
	ret := _m.Called(path, records)

	if len(ret) == 0 {
		panic("no return value specified for SaveText")
	}

	return ret.Error(0)
}

// SaveXML provides a mock function with given fields: path, records
func (_m *MockReportStore) SaveXML(path model.Path, records []model.DifferenceRecord) error {
	ret := _m.Called(path, records)

	if len(ret) == 0 {
		panic("no return value specified for SaveXML")
	}

	return ret.Error(0)
}

// NewMockReportStore creates a new instance of MockReportStore and asserts its expectations on cleanup.
func NewMockReportStore(t testingT) *MockReportStore {
	mock := &MockReportStore{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
