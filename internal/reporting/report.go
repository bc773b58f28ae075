package reporting

import (
	"time"

	"strategy-gate/internal/domain"
)

// Report is a validation run with its folds and every recorded decision.
type Report struct {
	GeneratedAt time.Time
	Run         domain.ValidationRun
	Decisions   []*domain.GateDecisionRecord // ordered by created_at ASC
}
