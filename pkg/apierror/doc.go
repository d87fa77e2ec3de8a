// Package apierror 提供带数字错误码的错误类型
//
// 每个存储池操作都有唯一的错误码（例如 poolinfo 为 -11004），错误同时携带一个分类：
//
//	NotFound         标识符既不是已存在存储池的名称也不是 UUID
//	OperationFailed  后端拒绝了启动、停止、定义等操作
//	BackendError     存储连接返回的其他错误
//	InvalidRequest   请求参数非法（例如 build="yes"）
//
// 使用示例：
//
//	err := apierror.WrapError(apierror.ErrNotFound, "pool with identifier scratch not found", rawErr)
//	if errors.Is(err, apierror.ErrNotFound) {
//	    reply := apierror.WithCode(err, -11004)
//	}
package apierror
