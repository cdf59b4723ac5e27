package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	apperrors "github.com/Fazich/ore-hq-server/pkg/errors"
)

// 单次分页扫描的行数上限，调用方用返回行数不足判断末页
const pageSize = 500

// classify 把驱动层错误归入固定的错误分类
// 连接获取超时、连接中断、重复键和普通语句失败分别返回不同的哨兵错误
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrRecordNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Join(apperrors.ErrPoolTimeout, err)
	}
	if errors.Is(err, driver.ErrBadConn) {
		return errors.Join(apperrors.ErrInteraction, err)
	}
	if isDuplicateKey(err) {
		return errors.Join(apperrors.ErrDuplicateRecord, err)
	}
	return errors.Join(apperrors.ErrQueryFailed, err)
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite（测试环境）
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
