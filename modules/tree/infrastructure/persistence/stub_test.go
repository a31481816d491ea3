package persistence

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
	"github.com/routenest/routenest/modules/tree/domain/content"
	"github.com/routenest/routenest/modules/tree/domain/node"
)

type stubTx struct {
	mu           sync.Mutex
	execFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}

func (s *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	var results pgx.BatchResults
	return results
}

func (s *stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.execFunc == nil {
		return pgconn.CommandTag{}, nil
	}
	return s.execFunc(ctx, sql, arguments...)
}

func (s *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryFunc == nil {
		return nil, errors.New("query not implemented")
	}
	return s.queryFunc(ctx, sql, args...)
}

func (s *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryRowFunc == nil {
		return stubRow{err: errors.New("query row not implemented")}
	}
	return s.queryRowFunc(ctx, sql, args...)
}

// assignRow copies stub row values into scan destinations. Values must carry
// the destination's exact element type; a nil entry leaves the zero value.
func assignRow(row []any, dest []any) error {
	if len(dest) != len(row) {
		return fmt.Errorf("destination length %d does not match row length %d", len(dest), len(row))
	}
	for i, target := range dest {
		if row[i] == nil {
			continue
		}
		tv := reflect.ValueOf(target)
		if tv.Kind() != reflect.Pointer {
			return fmt.Errorf("scan target %T is not a pointer", target)
		}
		rv := reflect.ValueOf(row[i])
		if !rv.Type().AssignableTo(tv.Elem().Type()) {
			return fmt.Errorf("cannot assign %T to %T", row[i], target)
		}
		tv.Elem().Set(rv)
	}
	return nil
}

type stubRow struct {
	row []any
	err error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assignRow(r.row, dest)
}

type stubRows struct {
	data [][]any
	idx  int
	err  error
}

func (r *stubRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.data) {
		return errors.New("no current row to scan")
	}
	return assignRow(r.data[r.idx-1], dest)
}

func (r *stubRows) Values() ([]any, error) {
	if r.idx == 0 || r.idx > len(r.data) {
		return nil, errors.New("no current row")
	}
	return r.data[r.idx-1], nil
}

func (r *stubRows) RawValues() [][]byte { return nil }
func (r *stubRows) Err() error          { return r.err }
func (r *stubRows) Close()              {}
func (r *stubRows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag{}
}
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

type stubSettingsRepo struct {
	mu              sync.Mutex
	getByIDFunc     func(id uuid.UUID) (*node.Settings, error)
	getOrCreateFunc func(def *node.Settings) (*node.Settings, error)
	saveFunc        func(s *node.Settings) (*node.Settings, error)
	deleted         [][]uuid.UUID
}

func (s *stubSettingsRepo) GetByID(ctx context.Context, id uuid.UUID) (*node.Settings, error) {
	if s.getByIDFunc == nil {
		return nil, ErrSettingsNotFound
	}
	return s.getByIDFunc(id)
}

func (s *stubSettingsRepo) GetOrCreate(ctx context.Context, def *node.Settings) (*node.Settings, error) {
	if s.getOrCreateFunc == nil {
		return def, nil
	}
	return s.getOrCreateFunc(def)
}

func (s *stubSettingsRepo) Save(ctx context.Context, settings *node.Settings) (*node.Settings, error) {
	if s.saveFunc == nil {
		return settings, nil
	}
	return s.saveFunc(settings)
}

func (s *stubSettingsRepo) DeleteByNodeIDs(ctx context.Context, nodeIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, nodeIDs)
	return nil
}

func (s *stubSettingsRepo) deletedNodeIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uuid.UUID
	for _, batch := range s.deleted {
		out = append(out, batch...)
	}
	return out
}

type stubContentStore struct {
	mu         sync.Mutex
	contents   map[uuid.UUID]*content.Content
	renamed    []uuid.UUID
	aclUpdated []uuid.UUID
	removed    []uuid.UUID
}

func (s *stubContentStore) FindByID(ctx context.Context, contentID uuid.UUID, requesterID string) (*content.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[contentID]
	if !ok {
		return nil, errors.New("content not found")
	}
	return c, nil
}

func (s *stubContentStore) UpdateName(ctx context.Context, contentID uuid.UUID, name string, principal accesscontrol.Principal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renamed = append(s.renamed, contentID)
	return true, nil
}

func (s *stubContentStore) UpdateAccessControl(ctx context.Context, contentID uuid.UUID, acl *accesscontrol.AccessControl, principal accesscontrol.Principal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aclUpdated = append(s.aclUpdated, contentID)
	return true, nil
}

func (s *stubContentStore) RemoveByID(ctx context.Context, contentID uuid.UUID, principal accesscontrol.Principal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, contentID)
	return true, nil
}

func (s *stubContentStore) removedIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, len(s.removed))
	copy(out, s.removed)
	return out
}
