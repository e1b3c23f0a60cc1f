package wire

import "testing"

func TestLoginReqRoundTrip(t *testing.T) {
	in := &LoginReq{UserID: "u-1", Password: "secret"}
	out := &LoginReq{}
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestLoginResRoundTrip(t *testing.T) {
	in := &LoginRes{Accepted: true, Token: "tok-abc", Message: "ok"}
	out := &LoginRes{}
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	in := &LogoutRes{Success: true, Message: "bye"}
	payload := append(in.Encode(), 0xFF)
	out := &LogoutRes{}
	if err := out.Decode(payload); err != ErrTrailingBytes {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

func TestDecodeRejectsShortPayload(t *testing.T) {
	in := &PartyInviteReq{PartyID: 7, InviteeUserID: "u-2"}
	payload := in.Encode()
	out := &PartyInviteReq{}
	if err := out.Decode(payload[:len(payload)-2]); err == nil {
		t.Fatal("expected a short-read error")
	}
}

func TestDungeonResultNotifyRoundTripWithRewards(t *testing.T) {
	in := &DungeonResultNotify{
		Result:  DungeonResultClear,
		TimeSec: 345,
		Deaths:  2,
		Rewards: []Item{{ItemID: 10, Count: 3}, {ItemID: 20, Count: 1}},
	}
	out := &DungeonResultNotify{}
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Result != in.Result || out.TimeSec != in.TimeSec || out.Deaths != in.Deaths {
		t.Fatalf("scalar fields mismatch: %+v", out)
	}
	if len(out.Rewards) != len(in.Rewards) {
		t.Fatalf("reward count mismatch: got %d want %d", len(out.Rewards), len(in.Rewards))
	}
	for i := range in.Rewards {
		if out.Rewards[i] != in.Rewards[i] {
			t.Fatalf("reward %d mismatch: got %+v want %+v", i, out.Rewards[i], in.Rewards[i])
		}
	}
}

func TestDungeonResultNotifyEmptyRewardList(t *testing.T) {
	in := &DungeonResultNotify{Result: DungeonResultFail, TimeSec: 10, Deaths: 5}
	out := &DungeonResultNotify{}
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Rewards) != 0 {
		t.Fatalf("expected no rewards, got %v", out.Rewards)
	}
}

func TestMatchFoundNotifyRoundTrip(t *testing.T) {
	in := &MatchFoundNotify{
		Success:    true,
		Code:       "OK",
		Message:    "matched",
		PartyID:    99,
		InstanceID: 1001,
		Endpoint:   "instance-7.local:9443",
		Ticket:     "ticket-xyz",
	}
	out := &MatchFoundNotify{}
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestVersionRejectRoundTrip(t *testing.T) {
	in := &VersionReject{Min: 1, Max: 3, Client: 9, Message: "unsupported version"}
	out := &VersionReject{}
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestInventoryUpdateNotifyRoundTrip(t *testing.T) {
	in := &InventoryUpdateNotify{
		CharID: 55,
		Items:  []Item{{ItemID: 1, Count: 1}},
	}
	out := &InventoryUpdateNotify{}
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.CharID != in.CharID || len(out.Items) != 1 || out.Items[0] != in.Items[0] {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestLogoutReqHasNoPayload(t *testing.T) {
	in := &LogoutReq{}
	encoded := in.Encode()
	if len(encoded) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(encoded))
	}
	out := &LogoutReq{}
	if err := out.Decode(encoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestLongStringTruncatedAt65535Bytes(t *testing.T) {
	huge := make([]byte, 70000)
	for i := range huge {
		huge[i] = 'a'
	}
	in := &LoginReq{UserID: "u", Password: string(huge)}
	out := &LoginReq{}
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Password) != 65535 {
		t.Fatalf("expected password truncated to 65535 bytes, got %d", len(out.Password))
	}
}
