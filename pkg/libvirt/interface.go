package libvirt

// StorageConnection 定义存储池相关的 libvirt 连接接口
// 用于抽象 libvirt 操作，便于测试和 mock
type StorageConnection interface {
	// ListPools 返回所有已定义存储池（包括活动和非活动）的名称
	ListPools() ([]string, error)
	LookupPoolByName(name string) (StoragePool, error)
	LookupPoolByUUID(id string) (StoragePool, error)
	// DefinePool 根据 XML 描述定义持久化存储池（不启动、不构建）
	DefinePool(descriptor string) (StoragePool, error)
}

// StoragePool 定义单个存储池句柄的操作
// 句柄只在一次请求内使用，调用方不缓存
type StoragePool interface {
	Name() string
	UUID() string

	Info() (*StoragePoolInfo, error)
	IsPersistent() (bool, error)
	IsActive() (bool, error)
	Autostart() (bool, error)
	NumOfVolumes() (int, error)
	ListVolumes() ([]string, error)
	XMLDesc() (string, error)

	Create() error
	Destroy() error
	Build() error
	Delete() error
	Undefine() error
	SetAutostart(autostart bool) error
}

var (
	_ StorageConnection = (*Client)(nil)
	_ StoragePool       = (*Pool)(nil)
)
