package workspaces

import "errors"

var (
	ErrNotFound      = errors.New("workspace not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrMemberExists  = errors.New("member already exists")
	ErrLastOwner     = errors.New("cannot remove the last owner")
	ErrMemberMissing = errors.New("member not found")
)
