package errors

import "fmt"

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// ========== 服务层错误类型 ==========

// Kind 服务层错误分类
type Kind int

const (
	KindNotFound    Kind = iota // 目标不存在或已被逻辑删除
	KindValidation              // 参数或引用完整性校验失败
	KindConflict                // 互斥锁等待超时，调用方可重试
	KindPersistence             // 存储层事务失败，已完整回滚
)

// AppError 服务层统一错误，handler根据Kind翻译为响应码
type AppError struct {
	Kind    Kind
	Field   string // 校验错误时指明出错字段，可为空
	Message string
	Err     error // 底层错误，可为空
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPCode 错误分类对应的错误码
func (e *AppError) HTTPCode() int {
	switch e.Kind {
	case KindNotFound:
		return CodeNotFound
	case KindValidation:
		return CodeInvalidParam
	case KindConflict:
		return CodeConflict
	default:
		return CodeServerError
	}
}

// ========== 构造方法 ==========

// NotFound 目标不存在或已删除
func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// Validation 校验失败
func Validation(field, message string) *AppError {
	return &AppError{Kind: KindValidation, Field: field, Message: message}
}

// Conflict 锁竞争失败
func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// Persistence 存储层失败
func Persistence(message string, err error) *AppError {
	return &AppError{Kind: KindPersistence, Message: message, Err: err}
}

// IsKind 判断错误是否为指定分类
func IsKind(err error, kind Kind) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == kind
}
