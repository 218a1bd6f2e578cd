package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/domain"
	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/events"
)

// ProgressService is the slice of the gamification service the handler needs.
type ProgressService interface {
	ApplyChallengeProgress(ctx context.Context, userID string, kind domain.ChallengeKind, amount int) error
}

// ProgressHandler advances challenge progress from record.logged events.
type ProgressHandler struct {
	service ProgressService
}

// NewProgressHandler constructs a handler over the gamification service.
func NewProgressHandler(service ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// Handle routes a record.logged event into challenge progress. Sleep records
// feed two kinds: duration minutes into sleep_hours and the quality percent
// into sleep_quality. Unknown event types are acknowledged without action so
// shared topics stay drainable.
func (h *ProgressHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != "record.logged" {
		return nil
	}

	var event events.RecordLogged
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("unmarshal record.logged: %w", err)
	}

	switch event.RecordType {
	case events.RecordTypeSteps:
		return h.service.ApplyChallengeProgress(ctx, event.UserID, domain.KindSteps, event.Value)
	case events.RecordTypeActivity:
		return h.service.ApplyChallengeProgress(ctx, event.UserID, domain.KindActivityDuration, event.Value)
	case events.RecordTypeSleep:
		if err := h.service.ApplyChallengeProgress(ctx, event.UserID, domain.KindSleepHours, event.Value); err != nil {
			return err
		}
		if event.Extra > 0 {
			return h.service.ApplyChallengeProgress(ctx, event.UserID, domain.KindSleepQuality, event.Extra)
		}
		return nil
	case events.RecordTypeHydration:
		return h.service.ApplyChallengeProgress(ctx, event.UserID, domain.KindHydration, event.Value)
	default:
		return fmt.Errorf("unknown record type: %s", event.RecordType)
	}
}
