package messaging

// Exchange и ключи маршрутизации доменных событий.
const (
	EventsExchangeName     = "npc_events_exchange"
	EventsExchangeType     = "topic"
	DefaultEventsQueueName = "npc_events"

	RoutingKeyCharacterGenerated = "character.generated"
	RoutingKeyConversationTurn   = "conversation.turn"
)
