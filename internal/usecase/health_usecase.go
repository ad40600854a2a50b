package usecase

import (
	"context"

	"checkout-relay-backend/internal/domain"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

// StoreProbe reports whether an optional backing store answers
type StoreProbe func(ctx context.Context) error

type healthUsecase struct {
	dispatcher domain.Dispatcher
	store      StoreProbe
}

// NewHealthUsecase reports relay configuration and, when probe is non-nil,
// the rate-limit store state.
func NewHealthUsecase(dispatcher domain.Dispatcher, probe StoreProbe) HealthUsecase {
	return &healthUsecase{dispatcher: dispatcher, store: probe}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{
		"status": "ok",
		"relay":  "configured",
		"store":  "memory",
	}
	if u.dispatcher == nil || !u.dispatcher.Configured() {
		status["relay"] = "not_configured"
	}
	if u.store != nil {
		if err := u.store(ctx); err != nil {
			status["store"] = "redis_unavailable"
		} else {
			status["store"] = "redis"
		}
	}
	return status
}
