package errors

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

var (
	ErrConfigLoad      = "CONFIG_LOAD_ERROR"
	ErrDatabaseConnect = "DATABASE_CONNECT_ERROR"
	ErrRPConnect       = "RPC_CONNECT_ERROR"
	ErrChainFetch      = "CHAIN_FETCH_ERROR"
	ErrAccountDecode   = "ACCOUNT_DECODE_ERROR"
	ErrRewardUpdate    = "REWARD_UPDATE_ERROR"
	ErrClaimProcess    = "CLAIM_PROCESS_ERROR"
	ErrSignup          = "SIGNUP_ERROR"
	ErrAccounting      = "ACCOUNTING_ERROR"
)

// 数据库错误分类
// 区分连接池超时、语句错误、连接中断和影响行数不符
var (
	ErrPoolTimeout     = errors.New("failed to get connection from pool")
	ErrQueryFailed     = errors.New("query failed")
	ErrInteraction     = errors.New("database interaction failed")
	ErrRowNotAffected  = errors.New("expected row was not affected")
	ErrRecordNotFound  = errors.New("record not found")
	ErrDuplicateRecord = errors.New("duplicate record")
)

func Is(err, target error) bool {
	return errors.Is(err, target)
}
