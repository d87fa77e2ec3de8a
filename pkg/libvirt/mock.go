package libvirt

import (
	"github.com/stretchr/testify/mock"
)

// MockConnection 是 StorageConnection 的 mock 实现
// 用于测试，不需要真实的 libvirt 连接
type MockConnection struct {
	mock.Mock
}

// NewMockConnection 创建新的 MockConnection
func NewMockConnection() *MockConnection {
	return &MockConnection{}
}

func (m *MockConnection) ListPools() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockConnection) LookupPoolByName(name string) (StoragePool, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(StoragePool), args.Error(1)
}

func (m *MockConnection) LookupPoolByUUID(id string) (StoragePool, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(StoragePool), args.Error(1)
}

func (m *MockConnection) DefinePool(descriptor string) (StoragePool, error) {
	args := m.Called(descriptor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(StoragePool), args.Error(1)
}

// MockPool 是 StoragePool 的 mock 实现
type MockPool struct {
	mock.Mock
}

// NewMockPool 创建新的 MockPool
func NewMockPool() *MockPool {
	return &MockPool{}
}

func (m *MockPool) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPool) UUID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPool) Info() (*StoragePoolInfo, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StoragePoolInfo), args.Error(1)
}

func (m *MockPool) IsPersistent() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockPool) IsActive() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockPool) Autostart() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockPool) NumOfVolumes() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockPool) ListVolumes() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPool) XMLDesc() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockPool) Create() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockPool) Destroy() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockPool) Build() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockPool) Delete() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockPool) Undefine() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockPool) SetAutostart(autostart bool) error {
	args := m.Called(autostart)
	return args.Error(0)
}

var (
	_ StorageConnection = (*MockConnection)(nil)
	_ StoragePool       = (*MockPool)(nil)
)
