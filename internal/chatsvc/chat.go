// Package chatsvc implements global and party-scoped chat fan-out. The
// service holds no membership state of its own: the dispatcher resolves
// recipients (all connected sessions for global, party members for party
// scope) and passes them in.
package chatsvc

import (
	"errors"

	"dungeonhub/internal/wire"
)

var ErrEmptyText = errors.New("chatsvc: message text must not be empty")

type Event struct {
	Scope        uint16
	PartyID      uint64
	SenderUserID string
	Text         string
}

type EventSink func(sessionID uint64, event Event)

type Service struct {
	sink EventSink
}

func NewService() *Service {
	return &Service{}
}

func (s *Service) SetEventSink(sink EventSink) {
	s.sink = sink
}

func (s *Service) emit(recipients []uint64, ev Event) {
	if s.sink == nil {
		return
	}
	for _, sid := range recipients {
		s.sink(sid, ev)
	}
}

// SendGlobal fans text out to recipients under global scope.
func (s *Service) SendGlobal(senderUserID, text string, recipients []uint64) error {
	if text == "" {
		return ErrEmptyText
	}
	s.emit(recipients, Event{Scope: wire.ChatEventGlobal, SenderUserID: senderUserID, Text: text})
	return nil
}

// SendParty fans text out to recipients (the party's members) under party
// scope.
func (s *Service) SendParty(senderUserID string, partyID uint64, text string, recipients []uint64) error {
	if text == "" {
		return ErrEmptyText
	}
	s.emit(recipients, Event{Scope: wire.ChatEventParty, PartyID: partyID, SenderUserID: senderUserID, Text: text})
	return nil
}
