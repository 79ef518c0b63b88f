package monitor

import (
	"time"

	"github.com/mudatech/healthmon/internal/domain"
)

// DefaultServices is the fixed set seeded into an empty registry at
// bootstrap. Expected responses are matched exactly against the body.
func DefaultServices() []domain.Service {
	base := domain.Service{
		IsActive:      true,
		Timeout:       10 * time.Second,
		CheckInterval: 5 * time.Minute,
	}
	mk := func(name, url, expected string) domain.Service {
		svc := base
		svc.Name = name
		svc.URL = url
		svc.ExpectedResponse = expected
		return svc
	}
	return []domain.Service{
		mk("gateway", "https://api.muda.tech/health", `{"status":"ok","service":"gateway"}`),
		mk("liquidity-rail", "https://api.muda.tech/v1/rail/health", `{"status":"ok","service":"liquidity-rail-admin"}`),
		mk("client-admin", "https://api.muda.tech/web/health", `{"status":"ok","service":"client-admin"}`),
		mk("wallet", "https://api.muda.tech/v1/health", `{"status":"ok","service":"wallet"}`),
	}
}
