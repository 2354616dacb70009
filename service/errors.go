package service

import (
	"errors"
	"fmt"
)

// 业务错误，handler 层用 errors.Is 映射成 response code
var (
	ErrAlreadySuspended = errors.New("user is already suspended")
	ErrNotSuspended     = errors.New("user is not suspended")
	ErrRoleNotFound     = errors.New("suspended role not found")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrMemberNotFound   = errors.New("member not found")
	ErrForbidden        = errors.New("missing permission")
	ErrBusy             = errors.New("another operation is in progress for this user")
)

// PlatformError Discord 侧角色变更失败
// Err 在平台返回 403 时包着 ErrForbidden。
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform %s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }

// IsForbidden 平台拒绝（权限不足 / 角色层级不够）
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
