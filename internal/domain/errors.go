package domain

import "errors"

// 可恢复错误分类，transport 层映射为 401/403/400/404
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
