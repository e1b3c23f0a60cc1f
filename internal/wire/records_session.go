package wire

// LoginReq{user_id:str, password:str}
type LoginReq struct {
	UserID   string
	Password string
}

func (m *LoginReq) Encode() []byte {
	w := newWriter()
	w.str(m.UserID)
	w.str(m.Password)
	return w.bytes()
}

func (m *LoginReq) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.UserID, err = r.str(); err != nil {
		return err
	}
	if m.Password, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}

// LoginRes{accepted:bool, token:str, message:str}
type LoginRes struct {
	Accepted bool
	Token    string
	Message  string
}

func (m *LoginRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Accepted)
	w.str(m.Token)
	w.str(m.Message)
	return w.bytes()
}

func (m *LoginRes) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.Accepted, err = r.boolean(); err != nil {
		return err
	}
	if m.Token, err = r.str(); err != nil {
		return err
	}
	if m.Message, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}

// VersionReject{min:u16, max:u16, client:u16, message:str}
type VersionReject struct {
	Min     uint16
	Max     uint16
	Client  uint16
	Message string
}

func (m *VersionReject) Encode() []byte {
	w := newWriter()
	w.u16(m.Min)
	w.u16(m.Max)
	w.u16(m.Client)
	w.str(m.Message)
	return w.bytes()
}

func (m *VersionReject) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.Min, err = r.u16(); err != nil {
		return err
	}
	if m.Max, err = r.u16(); err != nil {
		return err
	}
	if m.Client, err = r.u16(); err != nil {
		return err
	}
	if m.Message, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}

// LogoutReq carries no fields beyond the frame header.
type LogoutReq struct{}

func (m *LogoutReq) Encode() []byte { return nil }

func (m *LogoutReq) Decode(payload []byte) error {
	return newReader(payload).finish()
}

// LogoutRes{success:bool, message:str}
type LogoutRes struct {
	Success bool
	Message string
}

func (m *LogoutRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Message)
	return w.bytes()
}

func (m *LogoutRes) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.Success, err = r.boolean(); err != nil {
		return err
	}
	if m.Message, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}

// SessionReconnectReq{token:str, last_seq:u64}
type SessionReconnectReq struct {
	Token   string
	LastSeq uint64
}

func (m *SessionReconnectReq) Encode() []byte {
	w := newWriter()
	w.str(m.Token)
	w.u64(m.LastSeq)
	return w.bytes()
}

func (m *SessionReconnectReq) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.Token, err = r.str(); err != nil {
		return err
	}
	if m.LastSeq, err = r.u64(); err != nil {
		return err
	}
	return r.finish()
}

// SessionReconnectRes{success:bool, code:str, message:str, resume_seq:u64}
type SessionReconnectRes struct {
	Success   bool
	Code      string
	Message   string
	ResumeSeq uint64
}

func (m *SessionReconnectRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	w.u64(m.ResumeSeq)
	return w.bytes()
}

func (m *SessionReconnectRes) Decode(payload []byte) error {
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
	if m.ResumeSeq, err = r.u64(); err != nil {
		return err
	}
	return r.finish()
}
