package events

import (
	"sync"

	"go.uber.org/zap"
)

type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	position    int
	allEvents   []Event
	logger      *zap.Logger
	wg          sync.WaitGroup
	queue       chan delivery
	startOnce   sync.Once
	dropped     int
}

// dispatchQueueSize bounds the deliveries waiting for handlers. Appends
// beyond it are dropped for the handlers; the event itself is still stored.
const dispatchQueueSize = 1024

// delivery is one event with the handlers subscribed when it was appended
type delivery struct {
	event    Event
	handlers []EventHandler
}

func NewInMemoryEventStore(logger *zap.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		logger:      logger,
		queue:       make(chan delivery, dispatchQueueSize),
	}
}

// Verify interface compliance
var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	eventWithVersion := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}

	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)
	s.allEvents = append(s.allEvents, eventWithVersion)
	s.position++

	handlers := append([]EventHandler(nil), s.subscribers[event.Type()]...)
	if len(handlers) > 0 {
		s.startOnce.Do(func() { go s.dispatch() })
		s.wg.Add(1)
		select {
		case s.queue <- delivery{event: eventWithVersion, handlers: handlers}:
		default:
			s.wg.Done()
			s.dropped++
			s.logger.Warn("event dispatch queue full, handlers skipped",
				zap.String("event_type", event.Type()),
				zap.String("stream_id", streamID),
				zap.Int("dropped", s.dropped))
		}
	}

	return nil
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		newHandlers := make([]EventHandler, 0)
		for _, h := range handlers {
			if h != handler {
				newHandlers = append(newHandlers, h)
			}
		}
		s.subscribers[eventType] = newHandlers
	}

	return nil
}

// Dropped reports how many events were not delivered to handlers because
// the dispatch queue was full
func (s *InMemoryEventStore) Dropped() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.dropped
}

// Wait blocks until every handler dispatched so far has returned
func (s *InMemoryEventStore) Wait() {
	s.wg.Wait()
}

// dispatch delivers queued events one at a time so handlers see append order
func (s *InMemoryEventStore) dispatch() {
	for d := range s.queue {
		s.notifySubscribers(d.event, d.handlers)
		s.wg.Done()
	}
}

func (s *InMemoryEventStore) notifySubscribers(event Event, handlers []EventHandler) {
	for _, handler := range handlers {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		if err := handler.Handle(event); err != nil {
			s.logger.Warn("event handler failed",
				zap.String("event_type", event.Type()),
				zap.String("stream_id", event.StreamID()),
				zap.Error(err))
		}
	}
}
