package rules

import (
	"sync"
	"time"

	"github.com/moderncaliberwebdev/haus/internal/game/cards"
)

// EventType indicates the category of a game event.
type EventType string

const (
	EventPhaseChanged        EventType = "PHASE_CHANGED"
	EventHandDealt           EventType = "HAND_DEALT"
	EventBidPlaced           EventType = "BID_PLACED"
	EventContractEstablished EventType = "CONTRACT_ESTABLISHED"
	EventTrumpSelected       EventType = "TRUMP_SELECTED"
	EventExchangeSubmitted   EventType = "EXCHANGE_SUBMITTED"
	EventExchangeCompleted   EventType = "EXCHANGE_COMPLETED"
	EventCardPlayed          EventType = "CARD_PLAYED"
	EventTrickCompleted      EventType = "TRICK_COMPLETED"
	EventRoundReadyToScore   EventType = "ROUND_READY_TO_SCORE"
	EventRoundScored         EventType = "ROUND_SCORED"
	EventGameOver            EventType = "GAME_OVER"
)

// Event represents a state change that observers may react to. Fields that
// do not apply to a given type are left zero. Recipients limits delivery of
// private events (a dealt hand); empty means everyone at the table.
type Event struct {
	Type        EventType         `json:"type"`
	ID          string            `json:"id,omitempty"`
	GameID      string            `json:"game_id,omitempty"`
	Seat        Seat              `json:"seat"`
	Recipients  []Seat            `json:"recipients,omitempty"`
	Phase       Phase             `json:"phase"`
	Bid         Bid               `json:"bid"`
	Card        *cards.Card       `json:"card,omitempty"`
	Cards       []cards.Card      `json:"cards,omitempty"`
	Contract    *Contract         `json:"contract,omitempty"`
	Trump       *cards.Suit       `json:"trump,omitempty"`
	Team        Team              `json:"team"`
	Result      *RoundResult      `json:"result,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Description string            `json:"description,omitempty"`
}

// Private reports whether the event is addressed to specific seats only.
func (e Event) Private() bool {
	return len(e.Recipients) > 0
}

// VisibleTo reports whether seat may observe the event.
func (e Event) VisibleTo(seat Seat) bool {
	if !e.Private() {
		return true
	}
	for _, r := range e.Recipients {
		if r == seat {
			return true
		}
	}
	return false
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

type handledListener struct {
	handle   int
	listener Listener
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      []handledListener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners = append(bus.listeners, handledListener{handle: handle, listener: listener})
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered with Subscribe or SubscribeTyped.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, l := range bus.listeners {
		if l.handle == handle {
			bus.listeners = append(bus.listeners[:i:i], bus.listeners[i+1:]...)
			break
		}
	}
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event synchronously, first to the all-event listeners
// and then to the typed ones, each in subscription order.
// Listeners run outside the bus lock and may subscribe or unsubscribe.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	callbacks := make([]func(Event), 0, len(bus.listeners)+len(bus.typedListeners[event.Type]))
	for _, l := range bus.listeners {
		callbacks = append(callbacks, l.listener)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		callbacks = append(callbacks, listener.Callback)
	}
	bus.mu.RUnlock()

	for _, cb := range callbacks {
		cb(event)
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}

// NewEvent creates an event of the given type attributed to seat.
func NewEvent(eventType EventType, seat Seat) Event {
	return Event{
		Type: eventType,
		Seat: seat,
	}
}
