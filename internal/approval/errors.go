package approval

import (
	"errors"
	"fmt"
)

// ErrInvalidStatus 状态值不在允许的枚举范围内
var ErrInvalidStatus = errors.New("invalid status")

// InvalidStatusError 状态校验失败详情
type InvalidStatusError struct {
	Kind  string // product / shop
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid %s status %q", e.Kind, e.Value)
}

// Is 支持 errors.Is(err, ErrInvalidStatus)
func (e *InvalidStatusError) Is(target error) bool {
	return target == ErrInvalidStatus
}
