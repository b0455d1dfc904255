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
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tomtom215/tmmbs/internal/logging"
)

// FirestoreStore is the production Store.
type FirestoreStore struct {
	client *firestore.Client
}

// OpenFirestore connects to the (default) or named database of projectID.
func OpenFirestore(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	var (
		client *firestore.Client
		err    error
	)
	if databaseID == "" || databaseID == firestore.DefaultDatabaseID {
		client, err = firestore.NewClient(ctx, projectID, opts...)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("open firestore: %w", err)
	}

	logging.Info().
		Str("project_id", projectID).
		Str("database_id", databaseID).
		Msg("Firestore document store opened")
	return &FirestoreStore{client: client}, nil
}

// Get implements Store.
func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (doc *Document, err error) {
	start := time.Now()
	defer func() { observe(BackendFirestore, "get", collection, start, err) }()
	if err = checkID(collection, id); err != nil {
		return nil, err
	}

	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// Add implements Store. Firestore chooses the id.
func (s *FirestoreStore) Add(ctx context.Context, collection string, data map[string]interface{}) (id string, err error) {
	start := time.Now()
	defer func() { observe(BackendFirestore, "add", collection, start, err) }()

	ref, _, err := s.client.Collection(collection).Add(ctx, toFirestore(data))
	if err != nil {
		return "", translate(err)
	}
	return ref.ID, nil
}

// Set implements Store.
func (s *FirestoreStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) (err error) {
	start := time.Now()
	defer func() { observe(BackendFirestore, "set", collection, start, err) }()
	if err = checkID(collection, id); err != nil {
		return err
	}

	_, err = s.client.Collection(collection).Doc(id).Set(ctx, toFirestore(data))
	return translate(err)
}

// Update implements Store.
func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) (err error) {
	start := time.Now()
	defer func() { observe(BackendFirestore, "update", collection, start, err) }()
	if err = checkID(collection, id); err != nil {
		return err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updates := make([]firestore.Update, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if _, ok := v.(serverTimestamp); ok {
			v = firestore.ServerTimestamp
		}
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}

	_, err = s.client.Collection(collection).Doc(id).Update(ctx, updates)
	return translate(err)
}

// Delete implements Store.
func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) (err error) {
	start := time.Now()
	defer func() { observe(BackendFirestore, "delete", collection, start, err) }()
	if err = checkID(collection, id); err != nil {
		return err
	}

	_, err = s.client.Collection(collection).Doc(id).Delete(ctx)
	return translate(err)
}

// Query implements Store.
func (s *FirestoreStore) Query(ctx context.Context, collection string, q Query) (docs []Document, err error) {
	start := time.Now()
	defer func() { observe(BackendFirestore, "query", collection, start, err) }()

	query := s.client.Collection(collection).Query
	for _, f := range q.Where {
		if !validOperator(f.Op) {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, f.Op)
		}
		query = query.Where(f.Field, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, translate(err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

// Close releases the client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func toFirestore(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if _, ok := v.(serverTimestamp); ok {
			v = firestore.ServerTimestamp
		}
		out[k] = v
	}
	return out
}

// translate maps gRPC NotFound to ErrNotFound.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
