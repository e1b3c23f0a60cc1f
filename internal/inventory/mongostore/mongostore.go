// Package mongostore is a MongoDB-backed inventory.Store. Each inventory
// is one document in the "inventories" collection; every mutation also
// appends a document to "inventory_changes" as the durable change log.
package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dungeonhub/internal/errs"
	"dungeonhub/internal/inventory"
)

type invDoc struct {
	InventoryID  string           `bson:"_id"`
	Items        map[string]int64 `bson:"items"`
	NextChangeID uint64           `bson:"next_change_id"`
}

type changeDoc struct {
	InventoryID string `bson:"inventory_id"`
	ChangeID    uint64 `bson:"change_id"`
	Kind        int    `bson:"kind"`
	ItemID      uint32 `bson:"item_id"`
	Qty         uint32 `bson:"qty"`
	Reason      string `bson:"reason"`
}

type Store struct {
	inventories *mongo.Collection
	changes     *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		inventories: db.Collection("inventories"),
		changes:     db.Collection("inventory_changes"),
	}
}

func toItemKeys(items map[string]int64) map[uint32]uint32 {
	out := make(map[uint32]uint32, len(items))
	for k, v := range items {
		id, _ := stringToUint32(k)
		out[id] = uint32(v)
	}
	return out
}

func fromItemKeys(items map[uint32]uint32) map[string]int64 {
	out := make(map[string]int64, len(items))
	for k, v := range items {
		out[uint32ToString(k)] = int64(v)
	}
	return out
}

func (s *Store) Load(ctx context.Context, inventoryID string) (*inventory.State, bool, error) {
	var doc invDoc
	err := s.inventories.FindOne(ctx, bson.M{"_id": inventoryID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.WrapMsg(err, "mongostore: load failed")
	}

	log, err := s.changeLog(ctx, inventoryID)
	if err != nil {
		return nil, false, err
	}
	return &inventory.State{InventoryID: inventoryID, Items: toItemKeys(doc.Items), ChangeLog: log, NextChangeID: doc.NextChangeID}, true, nil
}

func (s *Store) Save(ctx context.Context, state *inventory.State) error {
	_, err := s.inventories.ReplaceOne(ctx,
		bson.M{"_id": state.InventoryID},
		invDoc{InventoryID: state.InventoryID, Items: fromItemKeys(state.Items), NextChangeID: state.NextChangeID},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errs.WrapMsg(err, "mongostore: save failed")
	}
	return nil
}

func (s *Store) appendChange(ctx context.Context, inventoryID string, change inventory.Change) error {
	_, err := s.changes.InsertOne(ctx, changeDoc{
		InventoryID: inventoryID,
		ChangeID:    change.ID,
		Kind:        int(change.Kind),
		ItemID:      change.ItemID,
		Qty:         change.Qty,
		Reason:      change.Reason,
	})
	if err != nil {
		return errs.WrapMsg(err, "mongostore: append change failed")
	}
	return nil
}

func (s *Store) Add(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) (bool, error) {
	if qty == 0 {
		return false, nil
	}
	st, _, err := s.Load(ctx, inventoryID)
	if err != nil {
		return false, err
	}
	if st == nil {
		st = &inventory.State{InventoryID: inventoryID, Items: make(map[uint32]uint32)}
	}
	st.Items[itemID] += qty
	change := inventory.Change{ID: st.NextChangeID, Kind: inventory.ChangeAdd, ItemID: itemID, Qty: qty, Reason: reason}
	st.NextChangeID++

	if err := s.Save(ctx, st); err != nil {
		return false, err
	}
	return true, s.appendChange(ctx, inventoryID, change)
}

func (s *Store) Remove(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) (bool, error) {
	if qty == 0 {
		return false, nil
	}
	st, ok, err := s.Load(ctx, inventoryID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	current := st.Items[itemID]
	if current < qty {
		return false, nil
	}
	remaining := current - qty
	if remaining == 0 {
		delete(st.Items, itemID)
	} else {
		st.Items[itemID] = remaining
	}
	change := inventory.Change{ID: st.NextChangeID, Kind: inventory.ChangeRemove, ItemID: itemID, Qty: qty, Reason: reason}
	st.NextChangeID++

	if err := s.Save(ctx, st); err != nil {
		return false, err
	}
	return true, s.appendChange(ctx, inventoryID, change)
}

func (s *Store) Set(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) error {
	st, _, err := s.Load(ctx, inventoryID)
	if err != nil {
		return err
	}
	if st == nil {
		st = &inventory.State{InventoryID: inventoryID, Items: make(map[uint32]uint32)}
	}
	if qty == 0 {
		delete(st.Items, itemID)
	} else {
		st.Items[itemID] = qty
	}
	change := inventory.Change{ID: st.NextChangeID, Kind: inventory.ChangeSet, ItemID: itemID, Qty: qty, Reason: reason}
	st.NextChangeID++

	if err := s.Save(ctx, st); err != nil {
		return err
	}
	return s.appendChange(ctx, inventoryID, change)
}

func (s *Store) changeLog(ctx context.Context, inventoryID string) ([]inventory.Change, error) {
	cur, err := s.changes.Find(ctx, bson.M{"inventory_id": inventoryID}, options.Find().SetSort(bson.M{"change_id": 1}))
	if err != nil {
		return nil, errs.WrapMsg(err, "mongostore: query change log failed")
	}
	defer cur.Close(ctx)

	var out []inventory.Change
	for cur.Next(ctx) {
		var d changeDoc
		if err := cur.Decode(&d); err != nil {
			return nil, errs.WrapMsg(err, "mongostore: decode change log failed")
		}
		out = append(out, inventory.Change{ID: d.ChangeID, Kind: inventory.ChangeKind(d.Kind), ItemID: d.ItemID, Qty: d.Qty, Reason: d.Reason})
	}
	return out, cur.Err()
}

func (s *Store) ChangeLog(ctx context.Context, inventoryID string) ([]inventory.Change, error) {
	return s.changeLog(ctx, inventoryID)
}

func (s *Store) BeginTransaction(ctx context.Context, inventoryID string) (*inventory.Transaction, error) {
	st, ok, err := s.Load(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		st = &inventory.State{InventoryID: inventoryID, Items: make(map[uint32]uint32)}
	}
	return inventory.NewTransactionSnapshot(inventoryID, st), nil
}

func (s *Store) CommitTransaction(ctx context.Context, _ *inventory.Transaction) error {
	return nil
}

func (s *Store) RollbackTransaction(ctx context.Context, tx *inventory.Transaction) error {
	st := tx.Snapshot()
	if err := s.Save(ctx, st); err != nil {
		return err
	}
	_, err := s.changes.DeleteMany(ctx, bson.M{"inventory_id": tx.InventoryID, "change_id": bson.M{"$gte": st.NextChangeID}})
	if err != nil {
		return errs.WrapMsg(err, "mongostore: rollback change log truncation failed")
	}
	return nil
}
