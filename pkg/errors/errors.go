// Package errors 提供统一错误辅助，不依赖 internal
package errors

import (
	"errors"
	"fmt"
)

// 常用哨兵错误；HTTP 层按此映射状态码
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidArg  = errors.New("invalid argument")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)

// Wrap 包装错误并附加消息
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf 带格式的 Wrap
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is 同标准库 errors.Is，便于调用方只引入本包
func Is(err, target error) bool { return errors.Is(err, target) }

// As 同标准库 errors.As
func As(err error, target any) bool { return errors.As(err, target) }
