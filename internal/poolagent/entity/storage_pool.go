package entity

import "fmt"

// PoolState 存储池状态，取值与 libvirt 的 virStoragePoolState 一致
type PoolState uint8

const (
	PoolStateInactive     PoolState = 0
	PoolStateBuilding     PoolState = 1
	PoolStateRunning      PoolState = 2
	PoolStateDegraded     PoolState = 3
	PoolStateInaccessible PoolState = 4
)

func (s PoolState) String() string {
	switch s {
	case PoolStateInactive:
		return "inactive"
	case PoolStateBuilding:
		return "building"
	case PoolStateRunning:
		return "running"
	case PoolStateDegraded:
		return "degraded"
	case PoolStateInaccessible:
		return "inaccessible"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// PoolInfo 存储池信息快照，每次查询重新计算
type PoolInfo struct {
	State       PoolState `json:"state"`       // 状态
	Capacity    uint64    `json:"capacity"`    // 总容量（字节）
	Allocation  uint64    `json:"allocation"`  // 已分配（字节）
	Available   uint64    `json:"available"`   // 可用容量（字节）
	Persistent  bool      `json:"persistent"`  // 是否持久化
	Autostart   bool      `json:"autostart"`   // 是否随主机启动
	VolumeCount uint32    `json:"volumeCount"` // 卷数量
}

// DefinedPool 定义成功后的存储池引用
type DefinedPool struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

// UndefineResult 取消定义的结果
// Warnings 记录删除磁盘内容时的失败，这些失败不会阻止取消定义
type UndefineResult struct {
	Warnings []string `json:"warnings,omitempty"`
}

// StoragePoolRequest 解析后的存储池请求
type StoragePoolRequest struct {
	Action     Action
	Identifier string // 名称或 UUID
	Descriptor string // pooldefine 使用的 XML 定义
	Build      bool   // pooldefine：定义后立即构建
	Delete     bool   // poolundefine：取消定义前删除磁盘内容
	Autostart  bool   // poolsetautostart：目标值
}
