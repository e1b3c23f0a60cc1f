package wire

// PartyCreateReq carries no fields; the caller's session identifies the
// would-be leader.
type PartyCreateReq struct{}

func (m *PartyCreateReq) Encode() []byte { return nil }
func (m *PartyCreateReq) Decode(payload []byte) error {
	return newReader(payload).finish()
}

// PartyCreateRes{success:bool, code:str, message:str, party_id:u64}
type PartyCreateRes struct {
	Success bool
	Code    string
	Message string
	PartyID uint64
}

func (m *PartyCreateRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	w.u64(m.PartyID)
	return w.bytes()
}

func (m *PartyCreateRes) Decode(payload []byte) error {
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
	return r.finish()
}

// PartyInviteReq{party_id:u64, invitee_user_id:str}
type PartyInviteReq struct {
	PartyID       uint64
	InviteeUserID string
}

func (m *PartyInviteReq) Encode() []byte {
	w := newWriter()
	w.u64(m.PartyID)
	w.str(m.InviteeUserID)
	return w.bytes()
}

func (m *PartyInviteReq) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.PartyID, err = r.u64(); err != nil {
		return err
	}
	if m.InviteeUserID, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}

// PartyInviteRes{success:bool, code:str, message:str}
type PartyInviteRes struct {
	Success bool
	Code    string
	Message string
}

func (m *PartyInviteRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	return w.bytes()
}

func (m *PartyInviteRes) Decode(payload []byte) error {
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
	return r.finish()
}

// PartyAcceptReq{party_id:u64, accept:bool}
type PartyAcceptReq struct {
	PartyID uint64
	Accept  bool
}

func (m *PartyAcceptReq) Encode() []byte {
	w := newWriter()
	w.u64(m.PartyID)
	w.bool(m.Accept)
	return w.bytes()
}

func (m *PartyAcceptReq) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.PartyID, err = r.u64(); err != nil {
		return err
	}
	if m.Accept, err = r.boolean(); err != nil {
		return err
	}
	return r.finish()
}

// PartyAcceptRes{success:bool, code:str, message:str}
type PartyAcceptRes struct {
	Success bool
	Code    string
	Message string
}

func (m *PartyAcceptRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	return w.bytes()
}

func (m *PartyAcceptRes) Decode(payload []byte) error {
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
	return r.finish()
}

// PartyDisbandReq{party_id:u64}
type PartyDisbandReq struct {
	PartyID uint64
}

func (m *PartyDisbandReq) Encode() []byte {
	w := newWriter()
	w.u64(m.PartyID)
	return w.bytes()
}

func (m *PartyDisbandReq) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.PartyID, err = r.u64(); err != nil {
		return err
	}
	return r.finish()
}

// PartyDisbandRes{success:bool, code:str, message:str}
type PartyDisbandRes struct {
	Success bool
	Code    string
	Message string
}

func (m *PartyDisbandRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	return w.bytes()
}

func (m *PartyDisbandRes) Decode(payload []byte) error {
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
	return r.finish()
}

// PartyEvent{event_type:u16, party_id:u64, subject_user_id:str}
type PartyEvent struct {
	EventType     uint16
	PartyID       uint64
	SubjectUserID string
}

func (m *PartyEvent) Encode() []byte {
	w := newWriter()
	w.u16(m.EventType)
	w.u64(m.PartyID)
	w.str(m.SubjectUserID)
	return w.bytes()
}

func (m *PartyEvent) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.EventType, err = r.u16(); err != nil {
		return err
	}
	if m.PartyID, err = r.u64(); err != nil {
		return err
	}
	if m.SubjectUserID, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}
