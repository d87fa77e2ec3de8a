package libvirt

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/digitalocean/go-libvirt"
	"github.com/google/uuid"
)

type Client struct {
	conn *libvirt.Libvirt
	uri  string
}

// New 连接本地 qemu:///system
func New() (*Client, error) {
	return NewWithURI(string(libvirt.QEMUSystem))
}

// NewWithURI 使用指定 URI 连接 libvirt
// 支持 qemu:///system、qemu+tcp://host/system、qemu+ssh://user@host/system 等格式
func NewWithURI(uri string) (*Client, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse libvirt uri %q: %w", uri, err)
	}

	l, err := libvirt.ConnectToURI(u)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", uri, err)
	}

	return &Client{conn: l, uri: uri}, nil
}

// URI 返回连接使用的 URI
func (c *Client) URI() string {
	return c.uri
}

// Close 断开 libvirt 连接
func (c *Client) Close() error {
	return c.conn.Disconnect()
}

// GetLibvirtVersion 返回 libvirt 版本号，同时用作连接健康检查
func (c *Client) GetLibvirtVersion() (string, error) {
	v, err := c.conn.ConnectGetLibVersion()
	if err != nil {
		return "", fmt.Errorf("get libvirt version: %w", err)
	}
	return formatLibvirtVersion(v), nil
}

// formatLibvirtVersion converts libvirt version number to human readable format
// libvirt version is encoded as: major * 1000000 + minor * 1000 + micro
// For example: 8003000 = 8.3.0
func formatLibvirtVersion(version uint64) string {
	major := version / 1000000
	minor := (version % 1000000) / 1000
	micro := version % 1000
	return fmt.Sprintf("%d.%d.%d", major, minor, micro)
}

// ListPools 列出所有存储池名称，按名称排序
func (c *Client) ListPools() ([]string, error) {
	// Flags: 0 表示活动和非活动的 pool 都返回
	pools, _, err := c.conn.ConnectListAllStoragePools(1000, 0)
	if err != nil {
		return nil, fmt.Errorf("list storage pools: %w", err)
	}

	names := make([]string, 0, len(pools))
	for _, p := range pools {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names, nil
}

// LookupPoolByName 按名称查找存储池
func (c *Client) LookupPoolByName(name string) (StoragePool, error) {
	pool, err := c.conn.StoragePoolLookupByName(name)
	if err != nil {
		return nil, fmt.Errorf("lookup storage pool %s: %w", name, err)
	}
	return &Pool{conn: c.conn, pool: pool}, nil
}

// LookupPoolByUUID 按 UUID 查找存储池
// 无法解析为 UUID 的标识符直接返回错误，不会发起 RPC
func (c *Client) LookupPoolByUUID(id string) (StoragePool, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse storage pool uuid %q: %w", id, err)
	}

	pool, err := c.conn.StoragePoolLookupByUUID(libvirt.UUID(u))
	if err != nil {
		return nil, fmt.Errorf("lookup storage pool by uuid %s: %w", id, err)
	}
	return &Pool{conn: c.conn, pool: pool}, nil
}

// DefinePool 定义持久化存储池
func (c *Client) DefinePool(descriptor string) (StoragePool, error) {
	pool, err := c.conn.StoragePoolDefineXML(descriptor, 0)
	if err != nil {
		return nil, fmt.Errorf("define storage pool: %w", err)
	}
	return &Pool{conn: c.conn, pool: pool}, nil
}
