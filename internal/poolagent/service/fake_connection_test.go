package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jimyag/poolagent/internal/poolagent/entity"
	"github.com/jimyag/poolagent/pkg/libvirt"
)

// fakeConnection 内存中的存储连接，按 libvirt 的状态规则模拟存储池
type fakeConnection struct {
	mu    sync.Mutex
	pools map[string]*fakePool

	// defined 记录 DefinePool 收到的定义
	defined []string
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{pools: make(map[string]*fakePool)}
}

// addPool 添加一个已定义的存储池
func (c *fakeConnection) addPool(name string, volumes ...string) *fakePool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &fakePool{
		conn:       c,
		name:       name,
		uuid:       uuid.NewString(),
		persistent: true,
		capacity:   100 << 30,
		allocation: 10 << 30,
		volumes:    volumes,
		desc:       fmt.Sprintf("<pool type=\"dir\"><name>%s</name></pool>", name),
	}
	c.pools[name] = p
	return p
}

func (c *fakeConnection) ListPools() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.pools))
	for name := range c.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (c *fakeConnection) LookupPoolByName(name string) (libvirt.StoragePool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pools[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("storage pool not found: no pool with matching name '%s'", name)
}

func (c *fakeConnection) LookupPoolByUUID(id string) (libvirt.StoragePool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse uuid %s: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.pools {
		if p.uuid == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("storage pool not found: no pool with matching uuid '%s'", id)
}

func (c *fakeConnection) DefinePool(descriptor string) (libvirt.StoragePool, error) {
	c.mu.Lock()
	c.defined = append(c.defined, descriptor)
	c.mu.Unlock()

	name := "defined"
	if start, end := strings.Index(descriptor, "<name>"), strings.Index(descriptor, "</name>"); start >= 0 && end > start {
		name = descriptor[start+len("<name>") : end]
	}
	p := c.addPool(name)
	p.desc = descriptor
	return p, nil
}

type fakePool struct {
	conn *fakeConnection

	name       string
	uuid       string
	state      entity.PoolState
	persistent bool
	autostart  bool
	capacity   uint64
	allocation uint64
	volumes    []string
	desc       string

	buildErr  error
	deleteErr error
	built     bool
	deleted   bool
}

func (p *fakePool) Name() string { return p.name }
func (p *fakePool) UUID() string { return p.uuid }

func (p *fakePool) Info() (*libvirt.StoragePoolInfo, error) {
	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()
	return &libvirt.StoragePoolInfo{
		State:       uint8(p.state),
		CapacityB:   p.capacity,
		AllocationB: p.allocation,
		AvailableB:  p.capacity - p.allocation,
	}, nil
}

func (p *fakePool) IsPersistent() (bool, error) { return p.persistent, nil }

func (p *fakePool) IsActive() (bool, error) {
	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()
	return p.state == entity.PoolStateRunning, nil
}

func (p *fakePool) Autostart() (bool, error) {
	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()
	return p.autostart, nil
}

func (p *fakePool) NumOfVolumes() (int, error) { return len(p.volumes), nil }

func (p *fakePool) ListVolumes() ([]string, error) {
	names := append([]string(nil), p.volumes...)
	sort.Strings(names)
	return names, nil
}

func (p *fakePool) XMLDesc() (string, error) { return p.desc, nil }

func (p *fakePool) Create() error {
	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()
	if p.state == entity.PoolStateRunning {
		return errors.New("operation invalid: storage pool is already active")
	}
	p.state = entity.PoolStateRunning
	return nil
}

func (p *fakePool) Destroy() error {
	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()
	if p.state != entity.PoolStateRunning {
		return errors.New("operation invalid: storage pool is not active")
	}
	p.state = entity.PoolStateInactive
	return nil
}

func (p *fakePool) Build() error {
	if p.buildErr != nil {
		return p.buildErr
	}
	p.built = true
	return nil
}

func (p *fakePool) Delete() error {
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deleted = true
	return nil
}

func (p *fakePool) Undefine() error {
	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()
	if p.state == entity.PoolStateRunning {
		return errors.New("operation invalid: storage pool is still active")
	}
	delete(p.conn.pools, p.name)
	return nil
}

func (p *fakePool) SetAutostart(autostart bool) error {
	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()
	p.autostart = autostart
	return nil
}

var _ libvirt.StorageConnection = (*fakeConnection)(nil)
var _ libvirt.StoragePool = (*fakePool)(nil)
