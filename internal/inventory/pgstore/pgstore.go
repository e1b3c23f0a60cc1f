// Package pgstore is a PostgreSQL-backed inventory.Store, persisting each
// inventory as a row of item_id/quantity pairs plus an append-only
// change_log table.
package pgstore

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"dungeonhub/internal/errs"
	"dungeonhub/internal/inventory"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the tables this store needs if they don't exist
// yet; callers run it once at startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS inventories (
	inventory_id TEXT PRIMARY KEY,
	items JSONB NOT NULL,
	next_change_id BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS inventory_changes (
	inventory_id TEXT NOT NULL,
	change_id BIGINT NOT NULL,
	kind SMALLINT NOT NULL,
	item_id BIGINT NOT NULL,
	qty BIGINT NOT NULL,
	reason TEXT NOT NULL,
	PRIMARY KEY (inventory_id, change_id)
);
`)
	if err != nil {
		return errs.WrapMsg(err, "pgstore: ensure schema failed")
	}
	return nil
}

func (s *Store) Load(ctx context.Context, inventoryID string) (*inventory.State, bool, error) {
	var itemsJSON []byte
	var nextChangeID uint64
	err := s.pool.QueryRow(ctx, `SELECT items, next_change_id FROM inventories WHERE inventory_id = $1`, inventoryID).
		Scan(&itemsJSON, &nextChangeID)
	if err != nil {
		return nil, false, nil
	}

	items := make(map[uint32]uint32)
	if err := json.Unmarshal(itemsJSON, &items); err != nil {
		return nil, false, errs.WrapMsg(err, "pgstore: decode items failed")
	}

	log, err := s.changeLog(ctx, inventoryID)
	if err != nil {
		return nil, false, err
	}

	return &inventory.State{InventoryID: inventoryID, Items: items, ChangeLog: log, NextChangeID: nextChangeID}, true, nil
}

func (s *Store) Save(ctx context.Context, state *inventory.State) error {
	itemsJSON, err := json.Marshal(state.Items)
	if err != nil {
		return errs.WrapMsg(err, "pgstore: encode items failed")
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO inventories (inventory_id, items, next_change_id)
VALUES ($1, $2, $3)
ON CONFLICT (inventory_id) DO UPDATE SET items = EXCLUDED.items, next_change_id = EXCLUDED.next_change_id
`, state.InventoryID, itemsJSON, state.NextChangeID)
	if err != nil {
		return errs.WrapMsg(err, "pgstore: save failed")
	}
	return nil
}

func (s *Store) appendChange(ctx context.Context, inventoryID string, change inventory.Change) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO inventory_changes (inventory_id, change_id, kind, item_id, qty, reason)
VALUES ($1, $2, $3, $4, $5, $6)
`, inventoryID, change.ID, int(change.Kind), change.ItemID, change.Qty, change.Reason)
	if err != nil {
		return errs.WrapMsg(err, "pgstore: append change failed")
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
	if err := s.appendChange(ctx, inventoryID, change); err != nil {
		return false, err
	}
	return true, nil
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
	if err := s.appendChange(ctx, inventoryID, change); err != nil {
		return false, err
	}
	return true, nil
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
	rows, err := s.pool.Query(ctx, `
SELECT change_id, kind, item_id, qty, reason FROM inventory_changes
WHERE inventory_id = $1 ORDER BY change_id ASC
`, inventoryID)
	if err != nil {
		return nil, errs.WrapMsg(err, "pgstore: query change log failed")
	}
	defer rows.Close()

	var out []inventory.Change
	for rows.Next() {
		var c inventory.Change
		var kind int
		if err := rows.Scan(&c.ID, &kind, &c.ItemID, &c.Qty, &c.Reason); err != nil {
			return nil, errs.WrapMsg(err, "pgstore: scan change log failed")
		}
		c.Kind = inventory.ChangeKind(kind)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ChangeLog(ctx context.Context, inventoryID string) ([]inventory.Change, error) {
	return s.changeLog(ctx, inventoryID)
}

// BeginTransaction snapshots the current row so RollbackTransaction can
// restore it; Postgres durability within a single handler call is not
// otherwise required by the contract.
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
	_, err := s.pool.Exec(ctx, `DELETE FROM inventory_changes WHERE inventory_id = $1 AND change_id >= $2`, tx.InventoryID, st.NextChangeID)
	if err != nil {
		return errs.WrapMsg(err, "pgstore: rollback change log truncation failed")
	}
	return nil
}
