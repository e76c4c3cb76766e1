package core

import (
	"encoding/json"
	"fmt"
)

// EventStore holds each user's calendar events as one JSON array under
// "events_{userId}". Mutations are serialized per user key, so concurrent
// operations against the same user's collection cannot lose updates;
// different users never contend.
type EventStore struct {
	kv     KVStore
	logger Logger
	idgen  IDGenerator
	locks  keyedMutex
}

// NewEventStore creates an EventStore over the given store.
func NewEventStore(kv KVStore, logger Logger, idgen IDGenerator) *EventStore {
	return &EventStore{kv: kv, logger: logger, idgen: idgen}
}

func eventsKey(userID string) string {
	return "events_" + userID
}

// List returns the user's events in insertion order. A user with no record
// yields an empty slice, and read failures degrade to empty with a logged
// warning; callers sort by date themselves.
func (s *EventStore) List(userID string) []Event {
	events, err := s.readEvents(userID)
	if err != nil {
		s.logger.Warn("loading events", "user", userID, "error", err)
		return nil
	}
	return events
}

// Add assigns a creation-time ID to the draft, appends it to the user's
// collection and persists. Returns the updated full list.
func (s *EventStore) Add(userID string, draft Event) ([]Event, error) {
	unlock := s.locks.lock(eventsKey(userID))
	defer unlock()

	events, err := s.readEvents(userID)
	if err != nil {
		return nil, err
	}

	draft.ID = s.idgen.New()
	events = append(events, draft)

	if err := s.writeEvents(userID, events); err != nil {
		return nil, err
	}

	s.logger.Info("event added", "user", userID, "event", draft.ID)
	return events, nil
}

// Update replaces every field except the ID of the event matching eventID.
// A missing ID leaves the collection unchanged; found reports whether the
// replacement was applied, so callers can tell a no-op from a hit.
func (s *EventStore) Update(userID, eventID string, fields Event) ([]Event, bool, error) {
	unlock := s.locks.lock(eventsKey(userID))
	defer unlock()

	events, err := s.readEvents(userID)
	if err != nil {
		return nil, false, err
	}

	found := false
	for i := range events {
		if events[i].ID == eventID {
			fields.ID = eventID
			events[i] = fields
			found = true
		}
	}
	if !found {
		return events, false, nil
	}

	if err := s.writeEvents(userID, events); err != nil {
		return nil, false, err
	}

	s.logger.Info("event updated", "user", userID, "event", eventID)
	return events, true, nil
}

// Delete removes the event matching eventID. A missing ID is a no-op;
// found reports whether anything was removed.
func (s *EventStore) Delete(userID, eventID string) ([]Event, bool, error) {
	unlock := s.locks.lock(eventsKey(userID))
	defer unlock()

	events, err := s.readEvents(userID)
	if err != nil {
		return nil, false, err
	}

	kept := events[:0:0]
	for _, e := range events {
		if e.ID != eventID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(events) {
		return events, false, nil
	}

	if err := s.writeEvents(userID, kept); err != nil {
		return nil, false, err
	}

	s.logger.Info("event deleted", "user", userID, "event", eventID)
	return kept, true, nil
}

func (s *EventStore) readEvents(userID string) ([]Event, error) {
	data, ok, err := s.kv.Get(eventsKey(userID))
	if err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var events []Event
	if err := json.Unmarshal([]byte(data), &events); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}
	return events, nil
}

func (s *EventStore) writeEvents(userID string, events []Event) error {
	if events == nil {
		events = []Event{} // store "[]", never "null"
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encoding events: %w", err)
	}
	if err := s.kv.Set(eventsKey(userID), string(data)); err != nil {
		return fmt.Errorf("persisting events: %w", err)
	}
	return nil
}
