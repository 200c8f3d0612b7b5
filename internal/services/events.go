package services

import (
	"foodgram/internal/logging"
	"foodgram/internal/metrics"
)

// Domain event names.
const (
	EventRecipeCreated       = "recipe.created"
	EventRecipeUpdated       = "recipe.updated"
	EventRecipeDeleted       = "recipe.deleted"
	EventFavoriteAdded       = "favorite.added"
	EventFavoriteRemoved     = "favorite.removed"
	EventCartAdded           = "shopping_cart.added"
	EventCartRemoved         = "shopping_cart.removed"
	EventSubscriptionAdded   = "subscription.added"
	EventSubscriptionRemoved = "subscription.removed"
)

// EventPublisher delivers domain events to a broker.
type EventPublisher interface {
	PublishEvent(event string, payload map[string]interface{}) error
}

// publish is best effort: a broker failure is logged and never fails the caller.
func publish(p EventPublisher, event string, payload map[string]interface{}) {
	if p == nil {
		return
	}
	err := p.PublishEvent(event, payload)
	metrics.RecordEvent(event, err)
	if err != nil {
		logging.Warn().Err(err).Str("event", event).Msg("failed to publish domain event")
	}
}
