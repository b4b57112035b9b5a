package memstore

import (
	"github.com/gaushala-dev/milk-delivery/backend/internal/handler"
	"github.com/gaushala-dev/milk-delivery/backend/internal/seed"
)

var (
	_ handler.Store = (*Store)(nil)
	_ seed.Store    = (*Store)(nil)
)
