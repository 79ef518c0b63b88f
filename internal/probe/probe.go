package probe

import (
	"context"

	"github.com/mudatech/healthmon/internal/domain"
)

// Outcome is the classified result of a single probe. All failure modes are
// folded into Status/ErrorMessage; a Checker never returns an error.
type Outcome struct {
	Status         domain.Status
	ResponseTimeMS int64
	ResponseBody   string
	HasBody        bool
	ErrorMessage   string
}

// Checker performs a single probe against a service endpoint.
type Checker interface {
	Check(ctx context.Context, svc domain.Service) Outcome
}
