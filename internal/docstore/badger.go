// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/tmmbs/internal/logging"
)

const (
	docKeyPrefix = "doc/"
	// timeTag marks an encoded timestamp so it decodes back to time.Time.
	timeTag = "$time"
)

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	Path       string
	InMemory   bool
	SyncWrites bool
}

// BadgerStore keeps documents in BadgerDB under doc/<collection>/<id>.
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

// OpenBadger opens (or creates) a BadgerDB for documents.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	path := cfg.Path
	if cfg.InMemory {
		path = ""
	}
	opts := badger.DefaultOptions(path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger document store: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Badger document store opened")
	return &BadgerStore{db: db, now: time.Now}, nil
}

func docKey(collection, id string) []byte {
	return []byte(docKeyPrefix + collection + "/" + id)
}

func checkID(collection, id string) error {
	if collection == "" || strings.Contains(collection, "/") {
		return fmt.Errorf("%w: collection %q", ErrInvalidID, collection)
	}
	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, collection, id string) (doc *Document, err error) {
	start := time.Now()
	defer func() { observe(BackendBadger, "get", collection, start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	if err = checkID(collection, id); err != nil {
		return nil, err
	}

	var data Fields
	err = s.db.View(func(txn *badger.Txn) error {
		var rerr error
		data, rerr = readDoc(txn, docKey(collection, id))
		return rerr
	})
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Data: data}, nil
}

// Add implements Store. The id is a random UUID.
func (s *BadgerStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := uuid.NewString()
	if err := s.write(ctx, "add", collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Set implements Store. It replaces the whole document.
func (s *BadgerStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	return s.write(ctx, "set", collection, id, data)
}

func (s *BadgerStore) write(ctx context.Context, op, collection, id string, data map[string]interface{}) (err error) {
	start := time.Now()
	defer func() { observe(BackendBadger, op, collection, start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = checkID(collection, id); err != nil {
		return err
	}

	val, err := s.encode(data)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docKey(collection, id), val)
	})
}

// Update implements Store. Top-level fields are merged into the existing
// document; ErrNotFound if there is none.
func (s *BadgerStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) (err error) {
	start := time.Now()
	defer func() { observe(BackendBadger, "update", collection, start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = checkID(collection, id); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := docKey(collection, id)
		current, err := readDoc(txn, key)
		if err != nil {
			return err
		}
		for k, v := range fields {
			current[k] = v
		}
		val, err := s.encode(current)
		if err != nil {
			return err
		}
		return txn.Set(key, val)
	})
}

// Delete implements Store. Deleting a missing document is not an error.
func (s *BadgerStore) Delete(ctx context.Context, collection, id string) (err error) {
	start := time.Now()
	defer func() { observe(BackendBadger, "delete", collection, start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = checkID(collection, id); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(docKey(collection, id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	})
}

// Query implements Store by scanning the collection.
func (s *BadgerStore) Query(ctx context.Context, collection string, q Query) (docs []Document, err error) {
	start := time.Now()
	defer func() { observe(BackendBadger, "query", collection, start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	for _, f := range q.Where {
		if !validOperator(f.Op) {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, f.Op)
		}
	}

	prefix := []byte(docKeyPrefix + collection + "/")
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var data Fields
			if err := item.Value(func(val []byte) error {
				var derr error
				data, derr = decode(val)
				return derr
			}); err != nil {
				return fmt.Errorf("read %s: %w", item.Key(), err)
			}
			if !matches(data, q) {
				continue
			}
			docs = append(docs, Document{
				ID:   string(item.Key()[len(prefix):]),
				Data: data,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if q.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			c := compareOrdered(docs[i].Data[q.OrderBy], docs[j].Data[q.OrderBy])
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// RunGC reclaims value log space until nothing is left to rewrite.
func (s *BadgerStore) RunGC(discardRatio float64) error {
	if s.db.Opts().InMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log GC: %w", err)
		}
	}
}

func readDoc(txn *badger.Txn, key []byte) (Fields, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	var data Fields
	err = item.Value(func(val []byte) error {
		var derr error
		data, derr = decode(val)
		return derr
	})
	return data, err
}

func matches(data Fields, q Query) bool {
	for _, f := range q.Where {
		v, present := data[f.Field]
		if !present {
			return false
		}
		c, comparable := compareValues(v, f.Value)
		switch f.Op {
		case "==":
			if !comparable || c != 0 {
				return false
			}
		case "!=":
			if comparable && c == 0 {
				return false
			}
		case "<":
			if !comparable || c >= 0 {
				return false
			}
		case "<=":
			if !comparable || c > 0 {
				return false
			}
		case ">":
			if !comparable || c <= 0 {
				return false
			}
		case ">=":
			if !comparable || c < 0 {
				return false
			}
		}
	}
	if q.OrderBy != "" {
		if _, ok := data[q.OrderBy]; !ok {
			return false
		}
	}
	return true
}

// Type ranks follow Firestore's cross-type ordering.
const (
	rankNull = iota
	rankBool
	rankNumber
	rankTime
	rankString
	rankOther
)

func rank(v interface{}) int {
	if v == nil {
		return rankNull
	}
	if _, ok := v.(bool); ok {
		return rankBool
	}
	if _, ok := toFloat(v); ok {
		return rankNumber
	}
	switch v.(type) {
	case time.Time, *time.Time:
		return rankTime
	case string:
		return rankString
	}
	return rankOther
}

// compareValues compares two values of the same kind. The second result
// is false when the kinds differ or cannot be ordered.
func compareValues(a, b interface{}) (int, bool) {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return 0, false
	}
	switch ra {
	case rankNull:
		return 0, true
	case rankBool:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	case rankNumber:
		x, _ := toFloat(a)
		y, _ := toFloat(b)
		return cmp3(x < y, x > y), true
	case rankTime:
		x, _ := toTime(a)
		y, _ := toTime(b)
		return cmp3(x.Before(y), x.After(y)), true
	case rankString:
		return strings.Compare(a.(string), b.(string)), true
	default:
		return 0, false
	}
}

func compareOrdered(a, b interface{}) int {
	if c, ok := compareValues(a, b); ok {
		return c
	}
	return rank(a) - rank(b)
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	default:
		return 0
	}
}

// encode resolves ServerTimestamp and tags timestamps so they survive JSON.
func (s *BadgerStore) encode(data map[string]interface{}) ([]byte, error) {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if _, ok := v.(serverTimestamp); ok {
			v = s.now().UTC()
		}
		out[k] = encodeValue(v)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

func encodeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		return map[string]interface{}{timeTag: t.UTC().Format(time.RFC3339Nano)}
	case *time.Time:
		if t == nil {
			return nil
		}
		return encodeValue(*t)
	case Fields:
		return encodeValue(map[string]interface{}(t))
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = encodeValue(e)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, e := range t {
			s[i] = encodeValue(e)
		}
		return s
	default:
		return v
	}
}

func decode(b []byte) (Fields, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	out := make(Fields, len(raw))
	for k, v := range raw {
		out[k] = decodeValue(v)
	}
	return out, nil
}

func decodeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if s, ok := t[timeTag].(string); ok && len(t) == 1 {
			if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return ts.UTC()
			}
		}
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = decodeValue(e)
		}
		return m
	case []interface{}:
		for i, e := range t {
			t[i] = decodeValue(e)
		}
		return t
	default:
		return v
	}
}
