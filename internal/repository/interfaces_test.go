package repository

import (
	"github.com/gaushala-dev/milk-delivery/backend/internal/handler"
	"github.com/gaushala-dev/milk-delivery/backend/internal/seed"
)

var (
	_ handler.Store = (*Repository)(nil)
	_ seed.Store    = (*Repository)(nil)
)
