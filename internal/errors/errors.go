package errors

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode 错误码类型
type ErrorCode int

// 错误码定义（按模块分组）
const (
	// 通用错误 (1000-1999)
	ErrUnknown          ErrorCode = 1000
	ErrInvalidParam     ErrorCode = 1001
	ErrNotFound         ErrorCode = 1002
	ErrAlreadyExists    ErrorCode = 1003
	ErrPermissionDenied ErrorCode = 1004
	ErrTimeout          ErrorCode = 1005
	ErrCanceled         ErrorCode = 1006

	// 游戏错误 (2000-2999)
	ErrInvalidConfiguration ErrorCode = 2000
	ErrInvalidDifficulty    ErrorCode = 2001
	ErrInvalidVoteTarget    ErrorCode = 2002
	ErrWrongPhase           ErrorCode = 2003
	ErrGameNotStarted       ErrorCode = 2004
	ErrGameAlreadyStarted   ErrorCode = 2005
	ErrNotHost              ErrorCode = 2006
	ErrNotEnoughPlayers     ErrorCode = 2007

	// 房间错误 (3000-3999)
	ErrRoomNotFound   ErrorCode = 3000
	ErrRoomFull       ErrorCode = 3001
	ErrRoomClosed     ErrorCode = 3002
	ErrPlayerNotFound ErrorCode = 3003
	ErrDuplicateName  ErrorCode = 3004

	// 词库错误 (4000-4999)
	ErrNoWordsAvailable ErrorCode = 4000
	ErrBatchExhausted   ErrorCode = 4001

	// 通信错误 (5000-5999)
	ErrRelayConnect  ErrorCode = 5000
	ErrRelaySend     ErrorCode = 5001
	ErrRelayClosed   ErrorCode = 5002
	ErrMessageFormat ErrorCode = 5003

	// 数据库错误 (6000-6999)
	ErrDatabaseConnect ErrorCode = 6000
	ErrDatabaseQuery   ErrorCode = 6001
	ErrDatabaseInsert  ErrorCode = 6002
	ErrDatabaseUpdate  ErrorCode = 6003
	ErrDatabaseDelete  ErrorCode = 6004
	ErrTransaction     ErrorCode = 6005

	// 配置错误 (7000-7999)
	ErrConfigLoad     ErrorCode = 7000
	ErrConfigParse    ErrorCode = 7001
	ErrConfigValidate ErrorCode = 7002
)

// 错误码消息映射
var errorMessages = map[ErrorCode]string{
	// 通用错误
	ErrUnknown:          "未知错误",
	ErrInvalidParam:     "无效的参数",
	ErrNotFound:         "资源未找到",
	ErrAlreadyExists:    "资源已存在",
	ErrPermissionDenied: "权限不足",
	ErrTimeout:          "操作超时",
	ErrCanceled:         "操作已取消",

	// 游戏错误
	ErrInvalidConfiguration: "无效的游戏配置",
	ErrInvalidDifficulty:    "无效的难度",
	ErrInvalidVoteTarget:    "无效的投票目标",
	ErrWrongPhase:           "当前阶段不允许此操作",
	ErrGameNotStarted:       "游戏未开始",
	ErrGameAlreadyStarted:   "游戏已经开始",
	ErrNotHost:              "只有房主可以执行此操作",
	ErrNotEnoughPlayers:     "玩家人数不足",

	// 房间错误
	ErrRoomNotFound:   "房间不存在",
	ErrRoomFull:       "房间已满",
	ErrRoomClosed:     "房间已关闭",
	ErrPlayerNotFound: "玩家不存在",
	ErrDuplicateName:  "玩家名称重复",

	// 词库错误
	ErrNoWordsAvailable: "没有可用的词条",
	ErrBatchExhausted:   "预取词条已用尽",

	// 通信错误
	ErrRelayConnect:  "实时通道连接失败",
	ErrRelaySend:     "实时消息发送失败",
	ErrRelayClosed:   "实时通道已关闭",
	ErrMessageFormat: "消息格式错误",

	// 数据库错误
	ErrDatabaseConnect: "数据库连接失败",
	ErrDatabaseQuery:   "数据库查询失败",
	ErrDatabaseInsert:  "数据库插入失败",
	ErrDatabaseUpdate:  "数据库更新失败",
	ErrDatabaseDelete:  "数据库删除失败",
	ErrTransaction:     "事务处理失败",

	// 配置错误
	ErrConfigLoad:     "配置加载失败",
	ErrConfigParse:    "配置解析失败",
	ErrConfigValidate: "配置验证失败",
}

// AppError 应用错误结构
type AppError struct {
	Code    ErrorCode    `json:"code"`            // 错误码
	Message string       `json:"message"`         // 错误消息
	Details string       `json:"details"`         // 详细信息
	Cause   error        `json:"-"`               // 原始错误
	Stack   []StackFrame `json:"stack,omitempty"` // 调用栈
}

// StackFrame 调用栈帧
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因错误
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	if cause != nil && e.Details == "" {
		e.Details = cause.Error()
	}
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, details ...string) *AppError {
	message, ok := errorMessages[code]
	if !ok {
		message = errorMessages[ErrUnknown]
	}

	err := &AppError{
		Code:    code,
		Message: message,
	}

	if len(details) > 0 {
		err.Details = strings.Join(details, "; ")
	}

	// 捕获调用栈
	err.captureStack(2)

	return err
}

// Newf 创建格式化的应用错误
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	details := fmt.Sprintf(format, args...)
	return New(code, details)
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, details ...string) *AppError {
	if err == nil {
		return nil
	}

	// 如果已经是AppError，保留原始错误码
	if appErr, ok := err.(*AppError); ok {
		if len(details) > 0 {
			appErr.Details = strings.Join(details, "; ") + "; " + appErr.Details
		}
		return appErr
	}

	appErr := New(code, details...)
	appErr.Cause = err
	if appErr.Details == "" {
		appErr.Details = err.Error()
	}

	return appErr
}

// Wrapf 包装格式化错误
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	details := fmt.Sprintf(format, args...)
	return Wrap(err, code, details)
}

// Is 判断错误是否为指定错误码
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// GetCode 获取错误码
func GetCode(err error) ErrorCode {
	if err == nil {
		return 0
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}

	return ErrUnknown
}

// captureStack 捕获调用栈
func (e *AppError) captureStack(skip int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)

	if n > 0 {
		frames := runtime.CallersFrames(pcs[:n])
		for {
			frame, more := frames.Next()

			// 跳过runtime和本包的调用
			if strings.Contains(frame.Function, "runtime.") ||
				strings.Contains(frame.Function, "github.com/wfunc/mister-white/internal/errors") {
				if !more {
					break
				}
				continue
			}

			e.Stack = append(e.Stack, StackFrame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})

			if !more {
				break
			}

			// 只保留前10个栈帧
			if len(e.Stack) >= 10 {
				break
			}
		}
	}
}

// GetStack 获取格式化的调用栈
func (e *AppError) GetStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, frame := range e.Stack {
		builder.WriteString(fmt.Sprintf("%d. %s\n   %s:%d\n",
			i+1, frame.Function, frame.File, frame.Line))
	}

	return builder.String()
}

// HTTPStatus 返回对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch {
	case e.Code == ErrNotFound, e.Code == ErrRoomNotFound, e.Code == ErrPlayerNotFound:
		return 404 // Not Found
	case e.Code == ErrPermissionDenied, e.Code == ErrNotHost:
		return 403 // Forbidden
	case e.Code == ErrTimeout:
		return 408 // Request Timeout
	case e.Code == ErrRoomFull, e.Code == ErrGameAlreadyStarted, e.Code == ErrAlreadyExists:
		return 409 // Conflict
	case e.Code >= 2000 && e.Code <= 4999:
		return 400 // Bad Request
	case e.Code >= 6000 && e.Code <= 6999:
		return 503 // Service Unavailable
	case e.Code == ErrInvalidParam:
		return 400 // Bad Request
	default:
		return 500 // Internal Server Error
	}
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	code := GetCode(err)
	switch code {
	case ErrTimeout,
		ErrRelayConnect,
		ErrDatabaseConnect,
		ErrDatabaseQuery:
		return true
	default:
		return false
	}
}

// IsCritical 判断是否为严重错误
func IsCritical(err error) bool {
	if err == nil {
		return false
	}

	code := GetCode(err)
	switch code {
	case ErrDatabaseConnect,
		ErrConfigLoad,
		ErrConfigValidate:
		return true
	default:
		return false
	}
}

// ValidationErrors 配置校验错误集合，一次性返回全部校验消息
type ValidationErrors struct {
	Messages []string `json:"messages"`
}

// Error 实现error接口
func (v *ValidationErrors) Error() string {
	return strings.Join(v.Messages, "; ")
}

// Add 追加一条校验消息
func (v *ValidationErrors) Add(format string, args ...interface{}) {
	v.Messages = append(v.Messages, fmt.Sprintf(format, args...))
}

// HasErrors 是否存在校验错误
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Messages) > 0
}

// AsAppError 转换为带错误码的应用错误
func (v *ValidationErrors) AsAppError() *AppError {
	return New(ErrInvalidConfiguration, v.Messages...)
}

// ErrorResponse API错误响应结构
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     *AppError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(err *AppError, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     err,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}
