// Package apierror 提供带数字错误码的错误类型，用于存储池请求的统一错误处理
package apierror

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind string

const (
	// KindNotFound 标识符既不匹配名称也不匹配 UUID
	KindNotFound Kind = "NotFound"
	// KindOperationFailed 后端拒绝了操作或定义
	KindOperationFailed Kind = "OperationFailed"
	// KindBackendError 存储连接返回的意外错误，原样透传
	KindBackendError Kind = "BackendError"
	// KindInvalidRequest 请求参数无法解析
	KindInvalidRequest Kind = "InvalidRequest"
)

// CodeGeneric 未归属任何操作的错误码
const CodeGeneric = -1

// ErrorResponse 非 stanza 通道（例如 HTTP 请求体无法解析）使用的错误响应
type ErrorResponse struct {
	XMLName   xml.Name `xml:"Response"     json:"-"`
	Errors    []Error  `xml:"Errors>Error" json:"errors"`
	RequestID string   `xml:"RequestID"    json:"requestID"`
}

func (er *ErrorResponse) Error() string {
	str := fmt.Sprintf("RequestID: %s", er.RequestID)
	for _, e := range er.Errors {
		str += fmt.Sprintf("; %s", e.Error())
	}
	return str
}

// Error 单个错误信息
type Error struct {
	Code     int    `xml:"Code"    json:"code"`
	Kind     Kind   `xml:"Kind"    json:"kind"`
	Message  string `xml:"Message" json:"message"`
	RawError error  `xml:"-"       json:"-"` // 内部错误，用于服务端调试，不会序列化到响应中
}

// Error 实现 error 接口
func (e *Error) Error() string {
	str := fmt.Sprintf("[%d %s] %s", e.Code, e.Kind, e.Message)
	if e.RawError != nil {
		str += fmt.Sprintf(" (RawError: %v)", e.RawError)
	}
	return str
}

// Is 实现 errors.Is 接口
// target 中为零值的字段不参与比较，因此 ErrNotFound 之类的哨兵错误只按 Kind 匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Code != 0 && t.Code != e.Code {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	return t.Code != 0 || t.Kind != ""
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.RawError
}

var _ interface {
	Error() string
	Is(target error) bool
	Unwrap() error
} = (*Error)(nil)

// NewError 创建新的错误
func NewError(code int, kind Kind, message string) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// NewErrorWithRaw 创建新的错误，包含原始错误信息
func NewErrorWithRaw(code int, kind Kind, message string, rawError error) *Error {
	return &Error{
		Code:     code,
		Kind:     kind,
		Message:  message,
		RawError: rawError,
	}
}

// WrapError 包装预定义的错误，保留 Code 和 Kind，使用自定义消息和原始错误
func WrapError(baseErr *Error, message string, rawError error) *Error {
	return &Error{
		Code:     baseErr.Code,
		Kind:     baseErr.Kind,
		Message:  message,
		RawError: rawError,
	}
}

// WithCode 把任意错误转换为带指定错误码的 *Error
// 非 *Error 的错误归类为 BackendError
func WithCode(err error, code int) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return &Error{
			Code:     code,
			Kind:     apiErr.Kind,
			Message:  apiErr.Message,
			RawError: apiErr.RawError,
		}
	}
	return &Error{
		Code:     code,
		Kind:     KindBackendError,
		Message:  err.Error(),
		RawError: err,
	}
}

// KindOf 返回错误的分类，非 *Error 的错误视为 BackendError
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindBackendError
}

// NewErrorResponse 创建新的错误响应
func NewErrorResponse(requestID string, errors ...*Error) *ErrorResponse {
	errs := make([]Error, len(errors))
	for i, e := range errors {
		errs[i] = *e
	}
	return &ErrorResponse{
		Errors:    errs,
		RequestID: requestID,
	}
}

// AddError 添加错误到响应
func (er *ErrorResponse) AddError(err *Error) {
	er.Errors = append(er.Errors, *err)
}
