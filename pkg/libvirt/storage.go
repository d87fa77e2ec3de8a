package libvirt

import (
	"fmt"
	"sort"

	"github.com/digitalocean/go-libvirt"
	"github.com/google/uuid"
)

// StoragePoolInfo 存储池信息（virStoragePoolGetInfo 的原始结果）
type StoragePoolInfo struct {
	State       uint8
	CapacityB   uint64
	AllocationB uint64
	AvailableB  uint64
}

// StateName 返回状态的可读名称
func (i *StoragePoolInfo) StateName() string {
	return mapStoragePoolState(i.State)
}

// mapStoragePoolState 将 libvirt 的 pool 状态转换为字符串
func mapStoragePoolState(s uint8) string {
	switch libvirt.StoragePoolState(s) {
	case libvirt.StoragePoolInactive:
		return "inactive"
	case libvirt.StoragePoolBuilding:
		return "building"
	case libvirt.StoragePoolRunning:
		return "running"
	case libvirt.StoragePoolDegraded:
		return "degraded"
	case libvirt.StoragePoolInaccessible:
		return "inaccessible"
	default:
		return "unknown"
	}
}

// Pool 是 go-libvirt 存储池的句柄
type Pool struct {
	conn *libvirt.Libvirt
	pool libvirt.StoragePool
}

func (p *Pool) Name() string {
	return p.pool.Name
}

func (p *Pool) UUID() string {
	return uuid.UUID(p.pool.UUID).String()
}

// Info 获取存储池状态和容量
func (p *Pool) Info() (*StoragePoolInfo, error) {
	state, capacity, allocation, available, err := p.conn.StoragePoolGetInfo(p.pool)
	if err != nil {
		return nil, fmt.Errorf("get pool info %s: %w", p.pool.Name, err)
	}
	return &StoragePoolInfo{
		State:       state,
		CapacityB:   capacity,
		AllocationB: allocation,
		AvailableB:  available,
	}, nil
}

func (p *Pool) IsPersistent() (bool, error) {
	persistent, err := p.conn.StoragePoolIsPersistent(p.pool)
	if err != nil {
		return false, fmt.Errorf("check pool persistent %s: %w", p.pool.Name, err)
	}
	return persistent != 0, nil
}

func (p *Pool) IsActive() (bool, error) {
	active, err := p.conn.StoragePoolIsActive(p.pool)
	if err != nil {
		return false, fmt.Errorf("check pool active %s: %w", p.pool.Name, err)
	}
	return active != 0, nil
}

func (p *Pool) Autostart() (bool, error) {
	autostart, err := p.conn.StoragePoolGetAutostart(p.pool)
	if err != nil {
		return false, fmt.Errorf("get pool autostart %s: %w", p.pool.Name, err)
	}
	return autostart != 0, nil
}

func (p *Pool) NumOfVolumes() (int, error) {
	n, err := p.conn.StoragePoolNumOfVolumes(p.pool)
	if err != nil {
		return 0, fmt.Errorf("count volumes of pool %s: %w", p.pool.Name, err)
	}
	return int(n), nil
}

// ListVolumes 列出存储池中的卷名称，按名称排序
func (p *Pool) ListVolumes() ([]string, error) {
	vols, _, err := p.conn.StoragePoolListAllVolumes(p.pool, 1000, 0)
	if err != nil {
		return nil, fmt.Errorf("list volumes of pool %s: %w", p.pool.Name, err)
	}

	names := make([]string, 0, len(vols))
	for _, v := range vols {
		names = append(names, v.Name)
	}
	sort.Strings(names)
	return names, nil
}

// XMLDesc 返回存储池的 XML 定义
func (p *Pool) XMLDesc() (string, error) {
	desc, err := p.conn.StoragePoolGetXMLDesc(p.pool, 0)
	if err != nil {
		return "", fmt.Errorf("get pool XML %s: %w", p.pool.Name, err)
	}
	return desc, nil
}

// Create 启动存储池
func (p *Pool) Create() error {
	if err := p.conn.StoragePoolCreate(p.pool, libvirt.StoragePoolCreateNormal); err != nil {
		return fmt.Errorf("start storage pool %s: %w", p.pool.Name, err)
	}
	return nil
}

// Destroy 停止存储池
func (p *Pool) Destroy() error {
	if err := p.conn.StoragePoolDestroy(p.pool); err != nil {
		return fmt.Errorf("stop storage pool %s: %w", p.pool.Name, err)
	}
	return nil
}

// Build 构建存储池（例如创建目录结构）
func (p *Pool) Build() error {
	if err := p.conn.StoragePoolBuild(p.pool, libvirt.StoragePoolBuildNew); err != nil {
		return fmt.Errorf("build storage pool %s: %w", p.pool.Name, err)
	}
	return nil
}

// Delete 删除存储池在磁盘上的内容
func (p *Pool) Delete() error {
	if err := p.conn.StoragePoolDelete(p.pool, libvirt.StoragePoolDeleteNormal); err != nil {
		return fmt.Errorf("delete storage pool %s: %w", p.pool.Name, err)
	}
	return nil
}

// Undefine 取消定义存储池
func (p *Pool) Undefine() error {
	if err := p.conn.StoragePoolUndefine(p.pool); err != nil {
		return fmt.Errorf("undefine storage pool %s: %w", p.pool.Name, err)
	}
	return nil
}

func (p *Pool) SetAutostart(autostart bool) error {
	var flag int32
	if autostart {
		flag = 1
	}
	if err := p.conn.StoragePoolSetAutostart(p.pool, flag); err != nil {
		return fmt.Errorf("set pool autostart %s: %w", p.pool.Name, err)
	}
	return nil
}
