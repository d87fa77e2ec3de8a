package apierror

// 按 Kind 匹配的哨兵错误，配合 errors.Is 使用
var (
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "storage pool not found"}
	ErrOperationFailed = &Error{Kind: KindOperationFailed, Message: "storage pool operation failed"}
	ErrBackend         = &Error{Kind: KindBackendError, Message: "storage backend error"}
	ErrInvalidRequest  = &Error{Kind: KindInvalidRequest, Message: "invalid request"}
)
