package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Pinger is implemented by both embedding and LLM services.
type Pinger interface {
	Ping(ctx context.Context) error
	ModelName() string
}

// Ensure both service kinds can be checked.
var (
	_ Pinger = (driven.EmbeddingService)(nil)
	_ Pinger = (driven.LLMService)(nil)
)

// CheckConnectivity pings each service and returns one warning per failure.
// Nil services are skipped. It never fails start-up; callers log the warnings.
func CheckConnectivity(ctx context.Context, services ...Pinger) []string {
	var warnings []string
	for _, svc := range services {
		if svc == nil {
			continue
		}
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := svc.Ping(pctx)
		cancel()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s unreachable: %v", svc.ModelName(), err))
		}
	}
	return warnings
}
