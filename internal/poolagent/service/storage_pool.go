// Package service 提供存储池请求到 libvirt 调用的映射
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimyag/poolagent/internal/poolagent/entity"
	"github.com/jimyag/poolagent/pkg/apierror"
	"github.com/jimyag/poolagent/pkg/libvirt"
	"github.com/jimyag/poolagent/pkg/stanza"
	"github.com/rs/zerolog"
)

// StoragePoolService 存储池服务
// 纯粹调用 libvirt API，不保存任何状态，存储池句柄只在单次调用内使用
type StoragePoolService struct {
	conn libvirt.StorageConnection
}

// NewStoragePoolService 创建存储池服务
func NewStoragePoolService(conn libvirt.StorageConnection) *StoragePoolService {
	return &StoragePoolService{
		conn: conn,
	}
}

// getPool 按名称或 UUID 查找存储池
// 调用方传来的标识符无法区分两种形式，所以先按名称查找，失败后再按 UUID 查找
func (s *StoragePoolService) getPool(ctx context.Context, identifier string) (libvirt.StoragePool, error) {
	pool, nameErr := s.conn.LookupPoolByName(identifier)
	if nameErr == nil {
		return pool, nil
	}

	pool, uuidErr := s.conn.LookupPoolByUUID(identifier)
	if uuidErr == nil {
		return pool, nil
	}

	zerolog.Ctx(ctx).Debug().
		Str("identifier", identifier).
		AnErr("byName", nameErr).
		AnErr("byUUID", uuidErr).
		Msg("Storage pool lookup failed")

	return nil, apierror.WrapError(apierror.ErrNotFound,
		fmt.Sprintf("pool with identifier %s not found", identifier),
		errors.Join(nameErr, uuidErr))
}

// ListPools 列举存储池名称
func (s *StoragePoolService) ListPools(ctx context.Context) ([]string, error) {
	names, err := s.conn.ListPools()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrBackend, "list storage pools failed", err)
	}
	return names, nil
}

// GetPoolInfo 查询存储池状态、容量和卷数量
func (s *StoragePoolService) GetPoolInfo(ctx context.Context, identifier string) (*entity.PoolInfo, error) {
	pool, err := s.getPool(ctx, identifier)
	if err != nil {
		return nil, err
	}

	raw, err := pool.Info()
	if err != nil {
		return nil, backendError(identifier, "get info", err)
	}
	persistent, err := pool.IsPersistent()
	if err != nil {
		return nil, backendError(identifier, "check persistent", err)
	}
	autostart, err := pool.Autostart()
	if err != nil {
		return nil, backendError(identifier, "get autostart", err)
	}
	volumeCount, err := pool.NumOfVolumes()
	if err != nil {
		return nil, backendError(identifier, "count volumes", err)
	}

	return &entity.PoolInfo{
		State:       entity.PoolState(raw.State),
		Capacity:    raw.CapacityB,
		Allocation:  raw.AllocationB,
		Available:   raw.AvailableB,
		Persistent:  persistent,
		Autostart:   autostart,
		VolumeCount: uint32(volumeCount),
	}, nil
}

// ListVolumes 列举存储池中的卷名称
func (s *StoragePoolService) ListVolumes(ctx context.Context, identifier string) ([]string, error) {
	pool, err := s.getPool(ctx, identifier)
	if err != nil {
		return nil, err
	}

	names, err := pool.ListVolumes()
	if err != nil {
		return nil, backendError(identifier, "list volumes", err)
	}
	return names, nil
}

// CreatePool 启动存储池
// 存储池已经处于活动状态时由后端拒绝，返回 OperationFailed
func (s *StoragePoolService) CreatePool(ctx context.Context, identifier string) error {
	pool, err := s.getPool(ctx, identifier)
	if err != nil {
		return err
	}

	if err := pool.Create(); err != nil {
		return operationFailed(identifier, "start", err)
	}
	return nil
}

// DestroyPool 停止存储池
func (s *StoragePoolService) DestroyPool(ctx context.Context, identifier string) error {
	pool, err := s.getPool(ctx, identifier)
	if err != nil {
		return err
	}

	if err := pool.Destroy(); err != nil {
		return operationFailed(identifier, "stop", err)
	}
	return nil
}

// DescribePool 返回存储池的 XML 定义
func (s *StoragePoolService) DescribePool(ctx context.Context, identifier string) (string, error) {
	pool, err := s.getPool(ctx, identifier)
	if err != nil {
		return "", err
	}

	desc, err := pool.XMLDesc()
	if err != nil {
		return "", backendError(identifier, "get description", err)
	}
	return desc, nil
}

// DefinePool 定义新的存储池，build 为 true 时立即构建
// 构建失败和定义失败不做区分，都返回 OperationFailed
func (s *StoragePoolService) DefinePool(ctx context.Context, descriptor string, build bool) (*entity.DefinedPool, error) {
	descriptor = stanza.StripUndeclaredNamespace(descriptor)

	pool, err := s.conn.DefinePool(descriptor)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrOperationFailed, "define storage pool failed", err)
	}

	if build {
		if err := pool.Build(); err != nil {
			return nil, apierror.WrapError(apierror.ErrOperationFailed,
				fmt.Sprintf("define storage pool %s failed: build step", pool.Name()), err)
		}
	}

	return &entity.DefinedPool{
		Name: pool.Name(),
		UUID: pool.UUID(),
	}, nil
}

// UndefinePool 取消定义存储池
// 活动的存储池先停止；deleteContents 为 true 时尝试删除磁盘内容，
// 删除失败只记录为警告，不影响取消定义
func (s *StoragePoolService) UndefinePool(ctx context.Context, identifier string, deleteContents bool) (*entity.UndefineResult, error) {
	logger := zerolog.Ctx(ctx)

	pool, err := s.getPool(ctx, identifier)
	if err != nil {
		return nil, err
	}

	active, err := pool.IsActive()
	if err != nil {
		return nil, backendError(identifier, "check active", err)
	}
	if active {
		if err := pool.Destroy(); err != nil {
			return nil, operationFailed(identifier, "stop", err)
		}
	}

	result := &entity.UndefineResult{}
	if deleteContents {
		if err := pool.Delete(); err != nil {
			logger.Warn().
				Err(err).
				Str("identifier", identifier).
				Msg("Failed to delete storage pool contents, continuing with undefine")
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("contents of pool %s were not deleted: %v", identifier, err))
		}
	}

	if err := pool.Undefine(); err != nil {
		return nil, operationFailed(identifier, "undefine", err)
	}
	return result, nil
}

// SetAutostart 设置存储池是否随主机启动
func (s *StoragePoolService) SetAutostart(ctx context.Context, identifier string, autostart bool) error {
	pool, err := s.getPool(ctx, identifier)
	if err != nil {
		return err
	}

	if err := pool.SetAutostart(autostart); err != nil {
		return operationFailed(identifier, "set autostart", err)
	}
	return nil
}

func operationFailed(identifier, op string, err error) error {
	return apierror.WrapError(apierror.ErrOperationFailed,
		fmt.Sprintf("%s storage pool %s failed", op, identifier), err)
}

func backendError(identifier, op string, err error) error {
	return apierror.WrapError(apierror.ErrBackend,
		fmt.Sprintf("%s of storage pool %s failed", op, identifier), err)
}
