// Package gameerr 定义业务错误分类。
//
// 所有服务返回的错误都可以通过 KindOf 归类，handler 再据此映射为业务码。
package gameerr

import (
	"fmt"

	"github.com/cockroachdb/errors"

	weberrors "github.com/lk2023060901/kickoff/pkg/web/errors"
)

// Kind 错误类别
type Kind int

const (
	KindStoreFailure Kind = iota
	KindNotFound
	KindInvalidTeamSize
	KindSelfMatchNotAllowed
	KindNoOpponentAvailable
	KindInvalidDrawCount
	KindInsufficientFunds
	KindNoCatalogAvailable
	KindMaxLevelReached
	KindInsufficientMaterial
	KindOwnsNoCharacter
	KindInvalidSellQuantity
	KindAccountExists
	KindInvalidCredentials
	KindInvalidArgument
)

var kindNames = map[Kind]string{
	KindStoreFailure:         "StoreFailure",
	KindNotFound:             "NotFound",
	KindInvalidTeamSize:      "InvalidTeamSize",
	KindSelfMatchNotAllowed:  "SelfMatchNotAllowed",
	KindNoOpponentAvailable:  "NoOpponentAvailable",
	KindInvalidDrawCount:     "InvalidDrawCount",
	KindInsufficientFunds:    "InsufficientFunds",
	KindNoCatalogAvailable:   "NoCatalogAvailable",
	KindMaxLevelReached:      "MaxLevelReached",
	KindInsufficientMaterial: "InsufficientMaterial",
	KindOwnsNoCharacter:      "OwnsNoCharacter",
	KindInvalidSellQuantity:  "InvalidSellQuantity",
	KindAccountExists:        "AccountExists",
	KindInvalidCredentials:   "InvalidCredentials",
	KindInvalidArgument:      "InvalidArgument",
}

var kindCodes = map[Kind]int{
	KindStoreFailure:         weberrors.CodeInternalError,
	KindNotFound:             weberrors.CodeNotFound,
	KindInvalidTeamSize:      40101,
	KindSelfMatchNotAllowed:  40102,
	KindNoOpponentAvailable:  40103,
	KindInvalidDrawCount:     40201,
	KindInsufficientFunds:    40202,
	KindNoCatalogAvailable:   40203,
	KindMaxLevelReached:      40301,
	KindInsufficientMaterial: 40302,
	KindOwnsNoCharacter:      40303,
	KindInvalidSellQuantity:  40304,
	KindAccountExists:        weberrors.CodeConflict,
	KindInvalidCredentials:   weberrors.CodeUnAuthorized,
	KindInvalidArgument:      weberrors.CodeInvalidParams,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Code 业务码
func (k Kind) Code() int {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return weberrors.CodeInternalError
}

// Error 业务错误
type Error struct {
	Kind    Kind
	Message string
	// Data 随错误返回给客户端的附加信息
	Data map[string]any
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Is 同类别的错误视为相等，便于 errors.Is(err, gameerr.ErrNotFound) 这类判断
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New 创建业务错误
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithData 附加返回数据
func (e *Error) WithData(kv ...any) *Error {
	if e.Data == nil {
		e.Data = make(map[string]any, len(kv)/2)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e.Data[key] = kv[i+1]
	}
	return e
}

// 用于 errors.Is 比较的哨兵
var (
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrInvalidTeamSize      = &Error{Kind: KindInvalidTeamSize}
	ErrSelfMatchNotAllowed  = &Error{Kind: KindSelfMatchNotAllowed}
	ErrNoOpponentAvailable  = &Error{Kind: KindNoOpponentAvailable}
	ErrInvalidDrawCount     = &Error{Kind: KindInvalidDrawCount}
	ErrInsufficientFunds    = &Error{Kind: KindInsufficientFunds}
	ErrNoCatalogAvailable   = &Error{Kind: KindNoCatalogAvailable}
	ErrMaxLevelReached      = &Error{Kind: KindMaxLevelReached}
	ErrInsufficientMaterial = &Error{Kind: KindInsufficientMaterial}
	ErrOwnsNoCharacter      = &Error{Kind: KindOwnsNoCharacter}
	ErrInvalidSellQuantity  = &Error{Kind: KindInvalidSellQuantity}
	ErrAccountExists        = &Error{Kind: KindAccountExists}
	ErrInvalidCredentials   = &Error{Kind: KindInvalidCredentials}
	ErrStoreFailure         = &Error{Kind: KindStoreFailure}
)

// Store 包装存储层错误，保留原始错误链
func Store(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return errors.WithDetail(errors.Wrapf(err, "store: %s", op), KindStoreFailure.String())
}

// As 提取业务错误
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf 错误类别，非业务错误一律视为 StoreFailure
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindStoreFailure
}

// IsValidation 是否为请求校验类错误，这类错误不需要重试
func IsValidation(err error) bool {
	k := KindOf(err)
	return err != nil && k != KindStoreFailure
}
