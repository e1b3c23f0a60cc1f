package dispatcher

import (
	"context"
	"testing"
	"time"

	"dungeonhub/internal/config"
	"dungeonhub/internal/inventory"
	"dungeonhub/internal/session"
	"dungeonhub/internal/wire"
)

func newTestServer() *Server {
	cfg := config.Default()
	return New(cfg, inventory.NewMemoryStore(), "dungeon.local:9000")
}

// decodeFrame strips an encoded frame's 8-byte header and decodes the
// payload into out.
func decodeFrame(t *testing.T, frame []byte, out interface{ Decode([]byte) error }) {
	t.Helper()
	if len(frame) < wire.HeaderSize {
		t.Fatalf("frame too short: %d bytes", len(frame))
	}
	if err := out.Decode(frame[wire.HeaderSize:]); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
}

func splitFrame(t *testing.T, frame []byte) (wire.Header, []byte) {
	t.Helper()
	var dec wire.FrameDecoder
	dec.Append(frame)
	hdr, payload, ok, err := dec.NextFrame()
	if err != nil || !ok {
		t.Fatalf("failed to split frame: ok=%v err=%v", ok, err)
	}
	return hdr, payload
}

// loginAs performs a LoginReq on an existing session and fails the test
// if it is not accepted. Returns the issued token.
func loginAs(t *testing.T, s *Server, sess *session.Session, userID string, now time.Time) string {
	t.Helper()
	req := &wire.LoginReq{UserID: userID, Password: devPassword}
	frame := s.HandlePacket(sess, wire.Header{Type: wire.TypeLoginReq, Version: 3}, req.Encode(), now)
	var res wire.LoginRes
	decodeFrame(t, frame, &res)
	if !res.Accepted {
		t.Fatalf("login for %s not accepted: %+v", userID, res)
	}
	return res.Token
}

// createParty issues a PartyCreateReq for sess and returns the new party id.
func createParty(t *testing.T, s *Server, sess *session.Session, now time.Time) uint64 {
	t.Helper()
	frame := s.HandlePacket(sess, wire.Header{Type: wire.TypePartyCreateReq, Version: 3}, (&wire.PartyCreateReq{}).Encode(), now)
	var res wire.PartyCreateRes
	decodeFrame(t, frame, &res)
	if !res.Success {
		t.Fatalf("party create failed: %+v", res)
	}
	return res.PartyID
}

// TestLoginThenMatchWithSecondParty covers scenario 1: two party leaders
// each request a match; the second call pairs them into fresh instances,
// and both sessions end up holding a MatchFoundNotify.
func TestLoginThenMatchWithSecondParty(t *testing.T) {
	now := time.Now()
	s := newTestServer()

	sess1 := s.NewSession(now)
	loginAs(t, s, sess1, "user1", now)
	p1 := createParty(t, s, sess1, now)

	sess2 := s.NewSession(now)
	loginAs(t, s, sess2, "user2", now)
	p2 := createParty(t, s, sess2, now)

	req1 := &wire.MatchReq{PartyID: p1, DungeonID: 2001, Difficulty: "normal"}
	frame1 := s.HandlePacket(sess1, wire.Header{Type: wire.TypeMatchReq, Version: 3}, req1.Encode(), now)
	var res1 wire.MatchFoundNotify
	decodeFrame(t, frame1, &res1)
	if res1.Success {
		t.Fatalf("expected no match yet for sole candidate, got success=%v code=%s", res1.Success, res1.Code)
	}

	req2 := &wire.MatchReq{PartyID: p2, DungeonID: 2001, Difficulty: "normal"}
	frame2 := s.HandlePacket(sess2, wire.Header{Type: wire.TypeMatchReq, Version: 3}, req2.Encode(), now)
	var res2 wire.MatchFoundNotify
	decodeFrame(t, frame2, &res2)
	if !res2.Success || res2.Code != "OK" {
		t.Fatalf("expected successful match, got %+v", res2)
	}

	payload, ok := sess1.DequeueSend()
	if !ok {
		t.Fatalf("session1 has no queued MatchFoundNotify")
	}
	var peerNotify wire.MatchFoundNotify
	if err := peerNotify.Decode(payload[wire.HeaderSize:]); err != nil {
		t.Fatalf("decode queued notify: %v", err)
	}
	if !peerNotify.Success {
		t.Fatalf("session1's queued notify should be a success, got %+v", peerNotify)
	}

	if got := s.Instances().Size(); got != 2 {
		t.Fatalf("expected 2 live instances, got %d", got)
	}
	if peerNotify.InstanceID == res2.InstanceID {
		t.Fatalf("expected distinct instance ids, got %d for both", res2.InstanceID)
	}
}

// TestVersionRejection covers scenario 2.
func TestVersionRejection(t *testing.T) {
	now := time.Now()
	s := newTestServer()
	sess := s.NewSession(now)

	before := s.Metrics().ErrorTotal
	req := &wire.LoginReq{UserID: "user1", Password: devPassword}
	frame := s.HandlePacket(sess, wire.Header{Type: wire.TypeLoginReq, Version: 4}, req.Encode(), now)

	hdr, payload := splitFrame(t, frame)
	if hdr.Version != 4 {
		t.Fatalf("expected reject framed at client version 4, got %d", hdr.Version)
	}
	var reject wire.VersionReject
	if err := reject.Decode(payload); err != nil {
		t.Fatalf("decode reject: %v", err)
	}
	if reject.Min != 1 || reject.Max != 3 || reject.Client != 4 {
		t.Fatalf("unexpected reject fields: %+v", reject)
	}
	if got := s.Metrics().ErrorTotal; got != before+1 {
		t.Fatalf("expected error_total to increment by 1, got delta %d", got-before)
	}
}

// TestDungeonResultIdempotence covers scenario 5: a repeated identical
// DungeonResultNotify is rejected as a duplicate and leaves the change
// log untouched.
func TestDungeonResultIdempotence(t *testing.T) {
	now := time.Now()
	s := newTestServer()

	leader := s.NewSession(now)
	loginAs(t, s, leader, "user1", now)
	partyID := createParty(t, s, leader, now)

	other := s.NewSession(now)
	loginAs(t, s, other, "user2", now)
	otherParty := createParty(t, s, other, now)

	// Leader's first MatchReq has nothing to pair with; the second
	// party's request completes the match.
	s.HandlePacket(leader, wire.Header{Type: wire.TypeMatchReq, Version: 3},
		(&wire.MatchReq{PartyID: partyID, DungeonID: 1, Difficulty: "normal"}).Encode(), now)
	matchFrame := s.HandlePacket(other, wire.Header{Type: wire.TypeMatchReq, Version: 3},
		(&wire.MatchReq{PartyID: otherParty, DungeonID: 1, Difficulty: "normal"}).Encode(), now)

	// The leader's own queued notify (session1 is not the requester of
	// the second call) carries its own instance/ticket.
	leaderPayload, ok := leader.DequeueSend()
	if !ok {
		t.Fatalf("expected leader to have a queued match notify")
	}
	var leaderNotify wire.MatchFoundNotify
	if err := leaderNotify.Decode(leaderPayload[wire.HeaderSize:]); err != nil {
		t.Fatalf("decode leader notify: %v", err)
	}

	var otherNotify wire.MatchFoundNotify
	decodeFrame(t, matchFrame, &otherNotify)
	if !otherNotify.Success {
		t.Fatalf("expected match to succeed, got %+v", otherNotify)
	}
	_ = leaderNotify

	ticket := otherNotify.Ticket
	instanceID := otherNotify.InstanceID

	enterReq := &wire.DungeonEnterReq{InstanceID: instanceID, Ticket: ticket, CharID: 501}
	enterFrame := s.HandlePacket(other, wire.Header{Type: wire.TypeDungeonEnterReq, Version: 3}, enterReq.Encode(), now)
	var enterRes wire.DungeonEnterRes
	decodeFrame(t, enterFrame, &enterRes)
	if !enterRes.Success {
		t.Fatalf("expected dungeon enter to succeed, got %+v", enterRes)
	}

	resultReq := &wire.DungeonResultNotify{
		Result:  wire.DungeonResultClear,
		Rewards: []wire.Item{{ItemID: 501, Count: 1}},
	}
	firstFrame := s.HandlePacket(other, wire.Header{Type: wire.TypeDungeonResultNotify, Version: 3}, resultReq.Encode(), now)
	var firstRes wire.DungeonResultRes
	decodeFrame(t, firstFrame, &firstRes)
	if !firstRes.Success {
		t.Fatalf("expected first dungeon result to succeed, got %+v", firstRes)
	}

	charInv := "char-501"
	logBefore, _ := s.inventory.ChangeLog(context.Background(), charInv)

	secondFrame := s.HandlePacket(other, wire.Header{Type: wire.TypeDungeonResultNotify, Version: 3}, resultReq.Encode(), now)
	var secondRes wire.DungeonResultRes
	decodeFrame(t, secondFrame, &secondRes)
	if secondRes.Success || secondRes.Code != "REWARD_DUPLICATE" {
		t.Fatalf("expected REWARD_DUPLICATE on resubmit, got %+v", secondRes)
	}

	logAfter, _ := s.inventory.ChangeLog(context.Background(), charInv)
	if len(logAfter) != len(logBefore) {
		t.Fatalf("change log size changed on duplicate submit: before=%d after=%d", len(logBefore), len(logAfter))
	}
}

// TestReconnectResumesSequence covers scenario 6.
func TestReconnectResumesSequence(t *testing.T) {
	now := time.Now()
	s := newTestServer()

	sess1 := s.NewSession(now)
	token := loginAs(t, s, sess1, "user1", now)
	sess1.SetLastSeq(5)

	sess2 := s.NewSession(now)
	reconnectReq := &wire.SessionReconnectReq{Token: token, LastSeq: 7}
	reconnectFrame := s.HandlePacket(sess2, wire.Header{Type: wire.TypeSessionReconnectReq, Version: 3}, reconnectReq.Encode(), now)
	var reconnectRes wire.SessionReconnectRes
	decodeFrame(t, reconnectFrame, &reconnectRes)

	if !reconnectRes.Success || reconnectRes.ResumeSeq != 8 {
		t.Fatalf("expected success with resume_from_seq=8, got %+v", reconnectRes)
	}
	if _, ok := s.SessionUser(sess1.ID()); ok {
		t.Fatalf("expected old session to have no bound user after reconnect migration")
	}
	gotUser, ok := s.SessionUser(sess2.ID())
	if !ok || gotUser != "user1" {
		t.Fatalf("expected new session bound to user1, got %q ok=%v", gotUser, ok)
	}
}

// TestSendQueueDropOldest covers scenario 3: a DropOldest session keeps
// only the most recent payloads fitting its byte cap.
func TestSendQueueDropOldest(t *testing.T) {
	now := time.Now()
	sess := session.New(1, "trace", session.Config{
		BucketCapacity:      1 << 20,
		BucketRefillPerSec:  1 << 20,
		SendQueueLimitBytes: 6,
		OverflowPolicy:      session.DropOldest,
		HeartbeatInterval:   20 * time.Second,
		Timeout:             60 * time.Second,
	}, now)

	if ok := sess.EnqueueSend(make([]byte, 4), now); !ok {
		t.Fatalf("first enqueue should succeed")
	}
	if ok := sess.EnqueueSend(make([]byte, 4), now); !ok {
		t.Fatalf("second enqueue should succeed")
	}
	if got := sess.QueuedBytes(); got > 6 {
		t.Fatalf("queued_bytes exceeds cap: %d", got)
	}
}

// TestSendQueueDisconnect covers scenario 4: an oversized payload against
// a Disconnect policy session is rejected and disconnects the session.
func TestSendQueueDisconnect(t *testing.T) {
	now := time.Now()
	sess := session.New(1, "trace", session.Config{
		BucketCapacity:      1 << 20,
		BucketRefillPerSec:  1 << 20,
		SendQueueLimitBytes: 4,
		OverflowPolicy:      session.Disconnect,
		HeartbeatInterval:   20 * time.Second,
		Timeout:             60 * time.Second,
	}, now)

	if ok := sess.EnqueueSend(make([]byte, 8), now); ok {
		t.Fatalf("expected enqueue of oversized payload to fail")
	}
	if sess.IsConnected() {
		t.Fatalf("expected session to be disconnected after overflow")
	}
}
