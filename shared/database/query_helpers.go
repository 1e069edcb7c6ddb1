package database

import (
	"fmt"
	"strings"
)

// whereBuilder собирает WHERE с позиционными параметрами $1, $2, ...
type whereBuilder struct {
	conds []string
	args  []interface{}
}

// add добавляет условие; единственный %d в cond заменяется номером параметра.
func (w *whereBuilder) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

// addGroup добавляет условия, объединенные через OR, с общим значением параметра.
func (w *whereBuilder) addGroup(arg interface{}, columns ...string) {
	w.args = append(w.args, arg)
	n := len(w.args)
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, fmt.Sprintf("%s ILIKE $%d", col, n))
	}
	w.conds = append(w.conds, "("+strings.Join(parts, " OR ")+")")
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// limitOffset возвращает " LIMIT $n OFFSET $n+1" и расширенный список аргументов.
func (w *whereBuilder) limitOffset(limit, offset int) (string, []interface{}) {
	args := append(append([]interface{}{}, w.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

// likePattern экранирует спецсимволы LIKE и оборачивает строку в %...%.
func likePattern(s string) string {
	return "%" + strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s) + "%"
}
