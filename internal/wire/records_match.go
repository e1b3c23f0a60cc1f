package wire

// MatchReq{party_id:u64, dungeon_id:u32, difficulty:str}
type MatchReq struct {
	PartyID    uint64
	DungeonID  uint32
	Difficulty string
}

func (m *MatchReq) Encode() []byte {
	w := newWriter()
	w.u64(m.PartyID)
	w.u32(m.DungeonID)
	w.str(m.Difficulty)
	return w.bytes()
}

func (m *MatchReq) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.PartyID, err = r.u64(); err != nil {
		return err
	}
	if m.DungeonID, err = r.u32(); err != nil {
		return err
	}
	if m.Difficulty, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}

// MatchFoundNotify{success:bool, code:str, message:str, party_id:u64, instance_id:u64, endpoint:str, ticket:str}
type MatchFoundNotify struct {
	Success    bool
	Code       string
	Message    string
	PartyID    uint64
	InstanceID uint64
	Endpoint   string
	Ticket     string
}

func (m *MatchFoundNotify) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	w.u64(m.PartyID)
	w.u64(m.InstanceID)
	w.str(m.Endpoint)
	w.str(m.Ticket)
	return w.bytes()
}

func (m *MatchFoundNotify) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.Success, err = r.boolean(); err != nil {
		return err
	}
	if m.Code, err = r.str(); err != nil {
		return err
	}
	if m.Message, err = r.str(); err != nil {
		return err
	}
	if m.PartyID, err = r.u64(); err != nil {
		return err
	}
	if m.InstanceID, err = r.u64(); err != nil {
		return err
	}
	if m.Endpoint, err = r.str(); err != nil {
		return err
	}
	if m.Ticket, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}
