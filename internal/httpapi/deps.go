package httpapi

import (
	"jobcatalog-engine/internal/events"
	"jobcatalog-engine/internal/run"
	"jobcatalog-engine/internal/store"
)

type Deps struct {
	Store  *store.Store
	Hub    *events.Hub
	Runner *run.Runner
}
