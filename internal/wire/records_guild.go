package wire

// GuildCreateReq{name:str}
type GuildCreateReq struct {
	Name string
}

func (m *GuildCreateReq) Encode() []byte {
	w := newWriter()
	w.str(m.Name)
	return w.bytes()
}

func (m *GuildCreateReq) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.Name, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}

// GuildCreateRes{success:bool, code:str, message:str, guild_id:u64}
type GuildCreateRes struct {
	Success bool
	Code    string
	Message string
	GuildID uint64
}

func (m *GuildCreateRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	w.u64(m.GuildID)
	return w.bytes()
}

func (m *GuildCreateRes) Decode(payload []byte) error {
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
	if m.GuildID, err = r.u64(); err != nil {
		return err
	}
	return r.finish()
}

// GuildJoinReq{guild_id:u64}
type GuildJoinReq struct {
	GuildID uint64
}

func (m *GuildJoinReq) Encode() []byte {
	w := newWriter()
	w.u64(m.GuildID)
	return w.bytes()
}

func (m *GuildJoinReq) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.GuildID, err = r.u64(); err != nil {
		return err
	}
	return r.finish()
}

// GuildJoinRes{success:bool, code:str, message:str}
type GuildJoinRes struct {
	Success bool
	Code    string
	Message string
}

func (m *GuildJoinRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	return w.bytes()
}

func (m *GuildJoinRes) Decode(payload []byte) error {
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

// GuildLeaveReq carries no fields; the caller's session identifies the
// departing member.
type GuildLeaveReq struct{}

func (m *GuildLeaveReq) Encode() []byte { return nil }
func (m *GuildLeaveReq) Decode(payload []byte) error {
	return newReader(payload).finish()
}

// GuildLeaveRes{success:bool, code:str, message:str}
type GuildLeaveRes struct {
	Success bool
	Code    string
	Message string
}

func (m *GuildLeaveRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	return w.bytes()
}

func (m *GuildLeaveRes) Decode(payload []byte) error {
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

// GuildEvent{event_type:u16, guild_id:u64, subject_user_id:str}
type GuildEvent struct {
	EventType     uint16
	GuildID       uint64
	SubjectUserID string
}

func (m *GuildEvent) Encode() []byte {
	w := newWriter()
	w.u16(m.EventType)
	w.u64(m.GuildID)
	w.str(m.SubjectUserID)
	return w.bytes()
}

func (m *GuildEvent) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.EventType, err = r.u16(); err != nil {
		return err
	}
	if m.GuildID, err = r.u64(); err != nil {
		return err
	}
	if m.SubjectUserID, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}
