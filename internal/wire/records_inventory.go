package wire

// InventoryUpdateNotify{char_id:u64, items: list<Item>}
type InventoryUpdateNotify struct {
	CharID uint64
	Items  []Item
}

func (m *InventoryUpdateNotify) Encode() []byte {
	w := newWriter()
	w.u64(m.CharID)
	writeItemList(w, m.Items)
	return w.bytes()
}

func (m *InventoryUpdateNotify) Decode(payload []byte) error {
	r := newReader(payload)
	var err error
	if m.CharID, err = r.u64(); err != nil {
		return err
	}
	if m.Items, err = readItemList(r); err != nil {
		return err
	}
	return r.finish()
}

// InventoryUpdateRes{success:bool, code:str, message:str, inventory_version:u64}
type InventoryUpdateRes struct {
	Success           bool
	Code              string
	Message           string
	InventoryVersion  uint64
}

func (m *InventoryUpdateRes) Encode() []byte {
	w := newWriter()
	w.bool(m.Success)
	w.str(m.Code)
	w.str(m.Message)
	w.u64(m.InventoryVersion)
	return w.bytes()
}

func (m *InventoryUpdateRes) Decode(payload []byte) error {
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
	if m.InventoryVersion, err = r.u64(); err != nil {
		return err
	}
	return r.finish()
}
