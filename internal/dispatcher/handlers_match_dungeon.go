package dispatcher

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"dungeonhub/internal/errs"
	"dungeonhub/internal/ids"
	"dungeonhub/internal/instance"
	"dungeonhub/internal/inventory"
	"dungeonhub/internal/matchqueue"
	"dungeonhub/internal/obslog"
	"dungeonhub/internal/reward"
	"dungeonhub/internal/session"
	"dungeonhub/internal/wire"
)

// difficultyCode folds a difficulty string into the uint16 bucket key the
// match queue pairs candidates on.
func difficultyCode(difficulty string) uint16 {
	var h uint16
	for i := 0; i < len(difficulty); i++ {
		h = h*31 + uint16(difficulty[i])
	}
	return h
}

func (s *Server) handleMatchReq(sess *session.Session, payload []byte, now time.Time) []byte {
	var req wire.MatchReq
	if err := req.Decode(payload); err != nil {
		s.fail("match_failed", sess)
		res := &wire.MatchFoundNotify{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypeMatchFoundNotify, res.Encode())
	}
	if _, ok := requireAuth(sess); !ok {
		s.fail("match_failed", sess)
		res := &wire.MatchFoundNotify{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypeMatchFoundNotify, res.Encode())
	}

	p, ok := s.parties.Get(req.PartyID)
	if !ok {
		s.fail("match_failed", sess)
		res := &wire.MatchFoundNotify{Success: false, Code: "PARTY_NOT_FOUND"}
		return s.respond(sess, wire.TypeMatchFoundNotify, res.Encode())
	}
	if _, isMember := p.Members[sess.ID()]; !isMember {
		s.fail("match_failed", sess)
		res := &wire.MatchFoundNotify{Success: false, Code: "NOT_PARTY_MEMBER"}
		return s.respond(sess, wire.TypeMatchFoundNotify, res.Encode())
	}

	cand := matchqueue.Candidate{
		PartyID:    req.PartyID,
		DungeonID:  uint64(req.DungeonID),
		Difficulty: difficultyCode(req.Difficulty),
		PartySize:  len(p.Members),
		MMR:        0,
		EnqueuedAt: now,
	}
	if err := s.matchq.Enqueue(cand); err != nil {
		s.fail("match_failed", sess)
		res := &wire.MatchFoundNotify{Success: false, Code: "QUEUE_REJECTED"}
		return s.respond(sess, wire.TypeMatchFoundNotify, res.Encode())
	}

	a, b, found := s.matchq.FindMatch(now)
	if !found {
		// Leave the candidate queued: it stays eligible to pair with a
		// later, independent MatchReq. Dequeue only belongs on the
		// terminal paths (party leaves/logout/disconnect).
		res := &wire.MatchFoundNotify{Success: false, Code: "MATCH_NOT_FOUND"}
		return s.respond(sess, wire.TypeMatchFoundNotify, res.Encode())
	}

	var ownNotify *wire.MatchFoundNotify
	for _, matched := range [2]matchqueue.Candidate{a, b} {
		inst, err := s.instances.CreateInstance(matched.PartyID, s.parties)
		if err != nil {
			s.fail("match_failed", sess)
			res := &wire.MatchFoundNotify{Success: false, Code: "INSTANCE_FAILED"}
			return s.respond(sess, wire.TypeMatchFoundNotify, res.Encode())
		}
		ticket := newTicket()
		s.instances.BindTicket(inst.ID, ticket)
		var seedBuf [4]byte
		_, _ = crand.Read(seedBuf[:])
		seed := binary.BigEndian.Uint32(seedBuf[:])
		s.instances.BindSeed(inst.ID, seed)

		notify := &wire.MatchFoundNotify{
			Success: true, Code: "OK",
			PartyID: matched.PartyID, InstanceID: inst.ID, Endpoint: s.endpoint, Ticket: ticket,
		}
		mp, _ := s.parties.Get(matched.PartyID)
		for memberSID := range mp.Members {
			s.instances.BindSessionInstance(memberSID, inst.ID)
			if matched.PartyID == req.PartyID && memberSID == sess.ID() {
				ownNotify = notify
				continue
			}
			s.pushTo(memberSID, wire.TypeMatchFoundNotify, notify.Encode())
		}
		if matched.PartyID == req.PartyID && ownNotify == nil {
			ownNotify = notify
		}
	}

	obslog.Info("match_found", "party matched", obslog.SessionID(sess.ID()))
	return s.respond(sess, wire.TypeMatchFoundNotify, ownNotify.Encode())
}

func (s *Server) handleDungeonEnter(sess *session.Session, payload []byte) []byte {
	var req wire.DungeonEnterReq
	if err := req.Decode(payload); err != nil {
		s.fail("dungeon_enter_failed", sess)
		res := &wire.DungeonEnterRes{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypeDungeonEnterRes, res.Encode())
	}
	if _, ok := requireAuth(sess); !ok {
		s.fail("dungeon_enter_failed", sess)
		res := &wire.DungeonEnterRes{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypeDungeonEnterRes, res.Encode())
	}

	inst, ok := s.instances.Get(req.InstanceID)
	if !ok {
		s.fail("dungeon_enter_failed", sess)
		res := &wire.DungeonEnterRes{Success: false, Code: errs.ErrInstanceNotFound.Msg}
		return s.respond(sess, wire.TypeDungeonEnterRes, res.Encode())
	}
	ticket, _ := s.instances.Ticket(req.InstanceID)
	if ticket != req.Ticket {
		s.fail("dungeon_enter_failed", sess)
		res := &wire.DungeonEnterRes{Success: false, Code: errs.ErrInvalidTicket.Msg}
		return s.respond(sess, wire.TypeDungeonEnterRes, res.Encode())
	}

	p, ok := s.parties.Get(inst.PartyID)
	if !ok {
		s.fail("dungeon_enter_failed", sess)
		res := &wire.DungeonEnterRes{Success: false, Code: errs.ErrPartyNotFound.Msg}
		return s.respond(sess, wire.TypeDungeonEnterRes, res.Encode())
	}
	if _, isMember := p.Members[sess.ID()]; !isMember {
		s.fail("dungeon_enter_failed", sess)
		res := &wire.DungeonEnterRes{Success: false, Code: errs.ErrNotPartyMember.Msg}
		return s.respond(sess, wire.TypeDungeonEnterRes, res.Encode())
	}

	if err := s.instances.RequestTransition(req.InstanceID, instance.Ready, s.parties); err != nil {
		s.fail("dungeon_enter_failed", sess)
		res := &wire.DungeonEnterRes{Success: false, Code: errs.ErrInvalidState.Msg}
		return s.respond(sess, wire.TypeDungeonEnterRes, res.Encode())
	}

	s.instances.BindSessionChar(sess.ID(), req.CharID)
	s.instances.BindSessionInstance(sess.ID(), req.InstanceID)
	seed, _ := s.instances.Seed(req.InstanceID)

	res := &wire.DungeonEnterRes{Success: true, Code: "OK", State: uint16(instance.Ready), Seed: seed}
	return s.respond(sess, wire.TypeDungeonEnterRes, res.Encode())
}

// handleDungeonResult drives the instance to its terminal run state,
// enforces the reward-duplicate latch, and performs the durable grant
// transactionally against the character's inventory, optionally topped up
// with a drop-table bonus roll on a clear.
func (s *Server) handleDungeonResult(ctx context.Context, sess *session.Session, payload []byte) []byte {
	var req wire.DungeonResultNotify
	if err := req.Decode(payload); err != nil {
		s.fail("dungeon_result_failed", sess)
		res := &wire.DungeonResultRes{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypeDungeonResultRes, res.Encode())
	}
	if _, ok := requireAuth(sess); !ok {
		s.fail("dungeon_result_failed", sess)
		res := &wire.DungeonResultRes{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypeDungeonResultRes, res.Encode())
	}

	instanceID, ok := s.instances.SessionInstance(sess.ID())
	if !ok {
		s.fail("dungeon_result_failed", sess)
		res := &wire.DungeonResultRes{Success: false, Code: errs.ErrNoInstance.Msg}
		return s.respond(sess, wire.TypeDungeonResultRes, res.Encode())
	}
	charID, ok := s.instances.SessionChar(sess.ID())
	if !ok {
		s.fail("dungeon_result_failed", sess)
		res := &wire.DungeonResultRes{Success: false, Code: errs.ErrCharNotSet.Msg}
		return s.respond(sess, wire.TypeDungeonResultRes, res.Encode())
	}
	inst, ok := s.instances.Get(instanceID)
	if !ok {
		s.fail("dungeon_result_failed", sess)
		res := &wire.DungeonResultRes{Success: false, Code: errs.ErrInstanceNotFound.Msg}
		return s.respond(sess, wire.TypeDungeonResultRes, res.Encode())
	}
	if _, already := s.instances.RewardGrant(instanceID); already {
		s.fail("dungeon_result_failed", sess)
		res := &wire.DungeonResultRes{Success: false, Code: errs.ErrRewardDuplicate.Msg}
		return s.respond(sess, wire.TypeDungeonResultRes, res.Encode())
	}

	next := instance.Fail
	if req.Result == wire.DungeonResultClear {
		next = instance.Clear
	}
	// Clear/Fail are only reachable from Playing; an entered (Ready)
	// instance passes through Playing first.
	var err error
	if inst.State == instance.Ready {
		err = s.instances.RequestTransition(instanceID, instance.Playing, s.parties)
	}
	if err == nil {
		err = s.instances.RequestTransition(instanceID, next, s.parties)
	}
	if err != nil {
		s.fail("dungeon_result_failed", sess)
		res := &wire.DungeonResultRes{Success: false, Code: errs.ErrInvalidState.Msg}
		return s.respond(sess, wire.TypeDungeonResultRes, res.Encode())
	}

	items := make([]reward.Item, 0, len(req.Rewards))
	for _, it := range req.Rewards {
		items = append(items, reward.Item{ItemID: it.ItemID, Qty: it.Count})
	}
	if next == instance.Clear {
		items = append(items, s.drops.Roll(1, s.rng)...)
	}

	grantID := uint64(ids.Generate())
	ephemeral := inventory.NewMemoryStore()
	if _, err := s.rewards.GrantRewardsDetailed(ctx, ephemeral, "ephemeral", grantID, items); err != nil {
		s.fail("dungeon_result_failed", sess)
		res := &wire.DungeonResultRes{Success: false, Code: errs.ErrRewardFailed.Msg}
		return s.respond(sess, wire.TypeDungeonResultRes, res.Encode())
	}

	charInventoryID := fmt.Sprintf("char-%d", charID)
	tx, err := s.inventory.BeginTransaction(ctx, charInventoryID)
	if err != nil {
		s.fail("dungeon_result_failed", sess)
		res := &wire.DungeonResultRes{Success: false, Code: errs.ErrInventoryFailed.Msg}
		return s.respond(sess, wire.TypeDungeonResultRes, res.Encode())
	}
	applyFailed := false
	for _, it := range items {
		if ok, err := s.inventory.Add(ctx, charInventoryID, it.ItemID, it.Qty, "dungeon_result"); err != nil || !ok {
			applyFailed = true
			break
		}
	}
	if applyFailed {
		_ = s.inventory.RollbackTransaction(ctx, tx)
		s.fail("dungeon_result_failed", sess)
		res := &wire.DungeonResultRes{Success: false, Code: errs.ErrInventoryFailed.Msg}
		return s.respond(sess, wire.TypeDungeonResultRes, res.Encode())
	}
	if err := s.inventory.CommitTransaction(ctx, tx); err != nil {
		s.fail("dungeon_result_failed", sess)
		res := &wire.DungeonResultRes{Success: false, Code: errs.ErrInventoryFailed.Msg}
		return s.respond(sess, wire.TypeDungeonResultRes, res.Encode())
	}

	s.instances.SetRewardGrant(instanceID, grantID)
	res := &wire.DungeonResultRes{Success: true, Code: "OK", Summary: fmt.Sprintf("result=%d items=%d", req.Result, len(items))}
	return s.respond(sess, wire.TypeDungeonResultRes, res.Encode())
}

func (s *Server) handleInventoryUpdate(ctx context.Context, sess *session.Session, payload []byte) []byte {
	var req wire.InventoryUpdateNotify
	if err := req.Decode(payload); err != nil {
		s.fail("inventory_update_failed", sess)
		res := &wire.InventoryUpdateRes{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypeInventoryUpdateRes, res.Encode())
	}
	if _, ok := requireAuth(sess); !ok {
		s.fail("inventory_update_failed", sess)
		res := &wire.InventoryUpdateRes{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypeInventoryUpdateRes, res.Encode())
	}

	charInventoryID := fmt.Sprintf("char-%d", req.CharID)
	tx, err := s.inventory.BeginTransaction(ctx, charInventoryID)
	if err != nil {
		s.fail("inventory_update_failed", sess)
		res := &wire.InventoryUpdateRes{Success: false, Code: errs.ErrInventoryFailed.Msg}
		return s.respond(sess, wire.TypeInventoryUpdateRes, res.Encode())
	}
	applyFailed := false
	for _, it := range req.Items {
		if ok, err := s.inventory.Add(ctx, charInventoryID, it.ItemID, it.Count, "inventory_update"); err != nil || !ok {
			applyFailed = true
			break
		}
	}
	if applyFailed {
		_ = s.inventory.RollbackTransaction(ctx, tx)
		s.fail("inventory_update_failed", sess)
		res := &wire.InventoryUpdateRes{Success: false, Code: errs.ErrInventoryFailed.Msg}
		return s.respond(sess, wire.TypeInventoryUpdateRes, res.Encode())
	}
	if err := s.inventory.CommitTransaction(ctx, tx); err != nil {
		s.fail("inventory_update_failed", sess)
		res := &wire.InventoryUpdateRes{Success: false, Code: errs.ErrInventoryFailed.Msg}
		return s.respond(sess, wire.TypeInventoryUpdateRes, res.Encode())
	}

	changeLog, _ := s.inventory.ChangeLog(ctx, charInventoryID)
	res := &wire.InventoryUpdateRes{Success: true, Code: "OK", InventoryVersion: uint64(len(changeLog))}
	return s.respond(sess, wire.TypeInventoryUpdateRes, res.Encode())
}
