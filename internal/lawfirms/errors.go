package lawfirms

import "errors"

var (
	ErrNotFound        = errors.New("law firm not found")
	ErrColumnNotFound  = errors.New("column not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrDuplicateColumn = errors.New("column key already exists")
	ErrReservedKey     = errors.New("column key is reserved")
)
