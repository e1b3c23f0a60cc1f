package wire

// ChatSendReq{scope:u16 (1=Global,2=Party), party_id:u64, text:str}
type ChatSendReq struct {
	Scope   uint16
	PartyID uint64
	Text    string
}

func (m *ChatSendReq) Encode() []byte {
	w := newWriter()
	w.u16(m.Scope)
	w.u64(m.PartyID)
	w.str(m.Text)
	return w.bytes()
}

func (m *ChatSendReq) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.Scope, err = r.u16(); err != nil {
		return err
	}
	if m.PartyID, err = r.u64(); err != nil {
		return err
	}
	if m.Text, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}

// ChatSendRes{success:bool, code:str, message:str}
type ChatSendRes struct {
	Success bool
	Code    string
	Message string
}

func (m *ChatSendRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	return w.bytes()
}

func (m *ChatSendRes) Decode(payload []byte) error {
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

// ChatEvent{scope:u16, party_id:u64, sender_user_id:str, text:str}
type ChatEvent struct {
	Scope        uint16
	PartyID      uint64
	SenderUserID string
	Text         string
}

func (m *ChatEvent) Encode() []byte {
	w := newWriter()
	w.u16(m.Scope)
	w.u64(m.PartyID)
	w.str(m.SenderUserID)
	w.str(m.Text)
	return w.bytes()
}

func (m *ChatEvent) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.Scope, err = r.u16(); err != nil {
		return err
	}
	if m.PartyID, err = r.u64(); err != nil {
		return err
	}
	if m.SenderUserID, err = r.str(); err != nil {
		return err
	}
	if m.Text, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}
