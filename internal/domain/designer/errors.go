package designer

import "errors"

var (
	ErrDesignerNotFound = errors.New("designer not found")
	ErrBudgetRange      = errors.New("min_budget must not exceed max_budget")
)
