package wire

// Item is the wire shape of one reward/inventory line: {item_id:u32, count:u32}.
type Item struct {
	ItemID uint32
	Count  uint32
}

func writeItemList(w *writer, items []Item) {
	w.u16(uint16(len(items)))
	for _, it := range items {
		w.u32(it.ItemID)
		w.u32(it.Count)
	}
}

func readItemList(r *reader) ([]Item, error) {
	n, err := r.u16()
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, n)
	for i := uint16(0); i < n; i++ {
		itemID, err := r.u32()
		if err != nil {
			return nil, err
		}
		count, err := r.u32()
		if err != nil {
			return nil, err
		}
		items = append(items, Item{ItemID: itemID, Count: count})
	}
	return items, nil
}

// DungeonEnterReq{instance_id:u64, ticket:str, char_id:u64}
type DungeonEnterReq struct {
	InstanceID uint64
	Ticket     string
	CharID     uint64
}

func (m *DungeonEnterReq) Encode() []byte {
	w := newWriter()
	w.u64(m.InstanceID)
	w.str(m.Ticket)
	w.u64(m.CharID)
	return w.bytes()
}

func (m *DungeonEnterReq) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.InstanceID, err = r.u64(); err != nil {
		return err
	}
	if m.Ticket, err = r.str(); err != nil {
		return err
	}
	if m.CharID, err = r.u64(); err != nil {
		return err
	}
	return r.finish()
}

// DungeonEnterRes{success:bool, code:str, message:str, state:u16, seed:u32}
type DungeonEnterRes struct {
	Success bool
	Code    string
	Message string
	State   uint16
	Seed    uint32
}

func (m *DungeonEnterRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	w.u16(m.State)
	w.u32(m.Seed)
	return w.bytes()
}

func (m *DungeonEnterRes) Decode(payload []byte) error {
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
	if m.State, err = r.u16(); err != nil {
		return err
	}
	if m.Seed, err = r.u32(); err != nil {
		return err
	}
	return r.finish()
}

// DungeonResultNotify{result:u16 (1=Clear,2=Fail), time_sec:u32, deaths:u16, rewards: list<Item>}
type DungeonResultNotify struct {
	Result  uint16
	TimeSec uint32
	Deaths  uint16
	Rewards []Item
}

func (m *DungeonResultNotify) Encode() []byte {
	w := newWriter()
	w.u16(m.Result)
	w.u32(m.TimeSec)
	w.u16(m.Deaths)
	writeItemList(w, m.Rewards)
	return w.bytes()
}

func (m *DungeonResultNotify) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.Result, err = r.u16(); err != nil {
		return err
	}
	if m.TimeSec, err = r.u32(); err != nil {
		return err
	}
	if m.Deaths, err = r.u16(); err != nil {
		return err
	}
	if m.Rewards, err = readItemList(r); err != nil {
		return err
	}
	return r.finish()
}

// DungeonResultRes{success:bool, code:str, message:str, summary:str}
type DungeonResultRes struct {
	Success bool
	Code    string
	Message string
	Summary string
}

func (m *DungeonResultRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	w.str(m.Summary)
	return w.bytes()
}

func (m *DungeonResultRes) Decode(payload []byte) error {
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
	if m.Summary, err = r.str(); err != nil {
		return err
	}
	return r.finish()
}
