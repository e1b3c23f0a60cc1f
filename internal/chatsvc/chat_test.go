package chatsvc

import (
	"testing"

	"dungeonhub/internal/wire"
)

func captureSink() (EventSink, *[]Event) {
	var events []Event
	return func(sessionID uint64, ev Event) {
		events = append(events, ev)
	}, &events
}

func TestSendGlobalFansOutToAllRecipients(t *testing.T) {
	sink, events := captureSink()
	s := NewService()
	s.SetEventSink(sink)

	if err := s.SendGlobal("alice", "hello world", []uint64{1, 2, 3}); err != nil {
		t.Fatalf("send global: %v", err)
	}
	if len(*events) != 3 {
		t.Fatalf("expected 3 fanned-out events, got %d", len(*events))
	}
	for _, e := range *events {
		if e.Scope != wire.ChatEventGlobal || e.Text != "hello world" {
			t.Fatalf("unexpected event %+v", e)
		}
	}
}

func TestSendGlobalRejectsEmptyText(t *testing.T) {
	s := NewService()
	if err := s.SendGlobal("alice", "", []uint64{1}); err != ErrEmptyText {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestSendPartyTagsPartyIDAndScope(t *testing.T) {
	sink, events := captureSink()
	s := NewService()
	s.SetEventSink(sink)

	if err := s.SendParty("alice", 42, "party up", []uint64{1, 2}); err != nil {
		t.Fatalf("send party: %v", err)
	}
	if len(*events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(*events))
	}
	for _, e := range *events {
		if e.Scope != wire.ChatEventParty || e.PartyID != 42 {
			t.Fatalf("unexpected event %+v", e)
		}
	}
}

func TestSendPartyRejectsEmptyText(t *testing.T) {
	s := NewService()
	if err := s.SendParty("alice", 42, "", []uint64{1}); err != ErrEmptyText {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}
