// Package errors provides standardized error types for the storefront.
// It defines the sentinel errors returned by the catalog, cart and search
// layers, typed wrappers that carry the offending key or field, and helpers
// for classifying an error at the transport boundary.
//
// Package errors 提供商店的标准化错误类型。
// 它定义了目录、购物车和搜索层返回的哨兵错误、携带出错键或字段的类型化包装器，
// 以及在传输边界对错误进行分类的辅助函数。
package errors

import (
	"errors"
	"fmt"
)

// Standard errors returned by the storefront.
//
// 商店返回的标准错误。
var (
	// ErrNotFound is returned when a product (or another keyed entity) does not exist.
	// 当产品（或其他带键实体）不存在时返回ErrNotFound。
	ErrNotFound = errors.New("hivestore: not found")

	// ErrInvalidPage is returned when a page number is below 1.
	// 当页码小于1时返回ErrInvalidPage。
	ErrInvalidPage = errors.New("hivestore: page must be greater than 0")

	// ErrInvalidPageSize is returned when a page size is outside [1, 100].
	// 当页面大小不在[1, 100]范围内时返回ErrInvalidPageSize。
	ErrInvalidPageSize = errors.New("hivestore: page size must be between 1 and 100")

	// ErrInvalidLimit is returned when a result limit is out of range.
	// 当结果数量限制超出范围时返回ErrInvalidLimit。
	ErrInvalidLimit = errors.New("hivestore: limit out of range")

	// ErrInvalidQuantity is returned when a cart quantity is not positive.
	// 当购物车数量不是正数时返回ErrInvalidQuantity。
	ErrInvalidQuantity = errors.New("hivestore: quantity must be positive")

	// ErrInvalidCategory is returned for a category outside the closed set.
	// 当分类不在固定集合中时返回ErrInvalidCategory。
	ErrInvalidCategory = errors.New("hivestore: unknown category")

	// ErrInvalidSort is returned for an unknown sort option.
	// 当排序选项未知时返回ErrInvalidSort。
	ErrInvalidSort = errors.New("hivestore: unknown sort option")

	// ErrInvalidProduct is returned when a product violates a data-integrity rule.
	// 当产品违反数据完整性规则时返回ErrInvalidProduct。
	ErrInvalidProduct = errors.New("hivestore: invalid product")

	// ErrCorruptState is returned when a persisted payload cannot be decoded.
	// 当持久化的数据无法解码时返回ErrCorruptState。
	ErrCorruptState = errors.New("hivestore: corrupt persisted state")
)

// validationSentinels lists the errors that signal bad caller input.
var validationSentinels = []error{
	ErrInvalidPage,
	ErrInvalidPageSize,
	ErrInvalidLimit,
	ErrInvalidQuantity,
	ErrInvalidCategory,
	ErrInvalidSort,
}

// NotFoundError represents a lookup that resolved to nothing.
// It wraps ErrNotFound with the kind of entity and the key that was used.
//
// NotFoundError 表示未找到任何结果的查找。
// 它用实体类型和所用的键包装ErrNotFound。
type NotFoundError struct {
	Kind string // Entity kind, e.g. "product" / 实体类型
	By   string // Lookup field, e.g. "id" or "slug" / 查找字段
	Key  string // The key that was looked up / 查找的键
}

// Error returns the error message.
//
// Error 返回错误消息。
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s %q not found", e.Kind, e.By, e.Key)
}

// Unwrap returns ErrNotFound so errors.Is works on wrapped values.
//
// Unwrap 返回ErrNotFound，以便errors.Is可以处理包装后的值。
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFound creates a new NotFoundError.
//
// NewNotFound 创建一个新的NotFoundError。
//
// Parameters:
//   - kind: The entity kind
//   - by: The lookup field
//   - key: The key that resolved to nothing
//
// Returns:
//   - *NotFoundError: A new not-found error
func NewNotFound(kind, by, key string) *NotFoundError {
	return &NotFoundError{Kind: kind, By: by, Key: key}
}

// ValidationError represents rejected caller input.
// It associates the field name and the offending value with a sentinel.
//
// ValidationError 表示被拒绝的调用者输入。
// 它将字段名称和出错的值与哨兵错误关联起来。
type ValidationError struct {
	Field string      // The input field / 输入字段
	Value interface{} // The rejected value / 被拒绝的值
	Err   error       // The underlying sentinel / 底层哨兵错误
}

// Error returns the error message.
//
// Error 返回错误消息。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s=%v", e.Err, e.Field, e.Value)
}

// Unwrap returns the underlying error.
//
// Unwrap 返回底层错误。
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidation creates a new ValidationError.
//
// NewValidation 创建一个新的ValidationError。
func NewValidation(field string, value interface{}, err error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Err: err}
}

// IsNotFound returns true if the error is or wraps ErrNotFound.
//
// IsNotFound 如果错误是或包装了ErrNotFound，则返回true。
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation returns true if the error signals rejected caller input.
//
// IsValidation 如果错误表示调用者输入被拒绝，则返回true。
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// IsCorruptState returns true if the error is or wraps ErrCorruptState.
//
// IsCorruptState 如果错误是或包装了ErrCorruptState，则返回true。
func IsCorruptState(err error) bool {
	return errors.Is(err, ErrCorruptState)
}
