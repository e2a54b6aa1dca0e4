package repository

import (
	"context"
	"database/sql"
	"strings"
)

// =====================
// 通用工具函数
// =====================

// queryIDs 执行查询并返回ID列表，保持结果顺序
func queryIDs(ctx context.Context, conn *sql.DB, query string, args ...interface{}) ([]int64, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// count 执行 COUNT 查询
func count(ctx context.Context, conn *sql.DB, query string, args ...interface{}) (int, error) {
	var n int
	if err := conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// placeholders 生成 IN 子句用的占位符，如 "?,?,?"
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeContains 构造包含匹配的 LIKE 参数
func likeContains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
