package repository

import (
	"strings"
)

// batchSet 描述批量更新中一个目标列
// expr 是每行的赋值表达式，其中恰好包含一个 ? 占位符
type batchSet struct {
	column string
	expr   string
}

// batchRow 一行的键值与各目标列的绑定值，values 与 sets 一一对应
type batchRow struct {
	key    interface{}
	values []interface{}
}

// buildCaseUpdate 构造单条按键寻址的批量 UPDATE：
//
//	UPDATE <table> SET <col> = CASE <key> WHEN ? THEN <expr> ... END, ...
//	WHERE <key> IN (?, ...)
//
// 所有键和数值都走参数绑定，一次往返提交，原子性由数据库保证。
// 不在键列表中的行不受影响；重复提交会重复生效，幂等性由调用方负责。
func buildCaseUpdate(table, keyColumn string, sets []batchSet, rows []batchRow) (string, []interface{}) {
	var sb strings.Builder
	args := make([]interface{}, 0, len(rows)*(len(sets)*2+1))

	sb.WriteString("UPDATE ")
	sb.WriteString(table)
	sb.WriteString(" SET ")

	for i, set := range sets {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(set.column)
		sb.WriteString(" = CASE ")
		sb.WriteString(keyColumn)
		for _, row := range rows {
			sb.WriteString(" WHEN ? THEN ")
			sb.WriteString(set.expr)
			args = append(args, row.key, row.values[i])
		}
		sb.WriteString(" END")
	}

	sb.WriteString(" WHERE ")
	sb.WriteString(keyColumn)
	sb.WriteString(" IN (")
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("?")
		args = append(args, row.key)
	}
	sb.WriteString(")")

	return sb.String(), args
}
