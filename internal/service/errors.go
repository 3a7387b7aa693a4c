package service

import (
	"errors"
	"fmt"
)

// 通用业务错误
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password does not satisfy policy")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserDisabled       = errors.New("user disabled")
	ErrInvalidUserStatus  = errors.New("invalid user status")
	ErrQueueUnavailable   = errors.New("queue unavailable")
)

// 商品相关错误
var (
	ErrSlugExists          = errors.New("slug already exists")
	ErrProductTitleInvalid = errors.New("product title invalid")
	ErrProductPriceInvalid = errors.New("product price invalid")
	ErrProductMOQInvalid   = errors.New("product minimum order quantity invalid")
	ErrProductNotOwned     = errors.New("product not owned by seller")
)

// 卖家与店铺相关错误
var (
	ErrNotSeller            = errors.New("user is not a seller")
	ErrAlreadySeller        = errors.New("user already applied to sell")
	ErrShopSlugExists       = errors.New("shop slug already exists")
	ErrShopSlugInvalid      = errors.New("shop slug invalid")
	ErrShopNotReachable     = errors.New("shop not reachable")
	ErrOnboardingIncomplete = errors.New("onboarding information incomplete")
)

// PersistenceError 写入存储失败
type PersistenceError struct {
	Op     string
	Entity string
	ID     uint
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %s #%d: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op, entity string, id uint, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Entity: entity, ID: id, Err: err}
}

// PartialActivationError 店铺激活与角色晋升只完成了一部分。
// ProfileActivated/RolePromoted 描述错误返回时两个实体的实际状态。
type PartialActivationError struct {
	ProfileID        uint
	UserID           uint
	ProfileActivated bool
	RolePromoted     bool
	Err              error
}

func (e *PartialActivationError) Error() string {
	return fmt.Sprintf("partial seller activation (profile=%d user=%d profile_activated=%t role_promoted=%t): %v",
		e.ProfileID, e.UserID, e.ProfileActivated, e.RolePromoted, e.Err)
}

func (e *PartialActivationError) Unwrap() error {
	return e.Err
}

// Compensated 补偿成功，两个实体都回到操作前的状态
func (e *PartialActivationError) Compensated() bool {
	return !e.ProfileActivated && !e.RolePromoted
}
