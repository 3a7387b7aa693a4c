package repository

import (
	"database/sql"
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeOperator postgres 的 LIKE 区分大小写，改用 ILIKE；sqlite 的 LIKE 对 ASCII 本身不敏感
func likeOperator(db *gorm.DB) string {
	if db != nil && db.Dialector != nil && strings.HasPrefix(strings.ToLower(db.Dialector.Name()), "postgres") {
		return "ILIKE"
	}
	return "LIKE"
}

// searchCondition 多列 OR 模糊匹配，所有列共用命名参数 @keyword
func searchCondition(operator string, columns []string) string {
	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		if column = strings.TrimSpace(column); column != "" {
			parts = append(parts, column+" "+operator+` @keyword ESCAPE '\'`)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// applySearch 关键字按字面匹配，% 与 _ 会被转义
func applySearch(query *gorm.DB, db *gorm.DB, keyword string, columns ...string) *gorm.DB {
	keyword = strings.TrimSpace(keyword)
	if query == nil || keyword == "" {
		return query
	}
	condition := searchCondition(likeOperator(db), columns)
	if condition == "" {
		return query
	}
	return query.Where(condition, sql.Named("keyword", "%"+likeEscaper.Replace(keyword)+"%"))
}
