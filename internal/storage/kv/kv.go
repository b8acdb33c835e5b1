package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// ErrKeyNotFound is returned by Get when the key is absent from the store.
var ErrKeyNotFound = errors.New("key not found")

// Entry is one key/value pair yielded by List.
type Entry struct {
	Key   []byte
	Value []byte
}

// Store is the durable ordered map the catalog is built on. Keys are
// byte strings, iteration is in lexicographic key order, and the host
// persists the contents across process restarts.
type Store interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error
	// List returns every entry whose key starts with prefix, in key order.
	List(ctx context.Context, prefix []byte) ([]Entry, error)

	// WithTx executes a function in a new transaction.
	WithTx(ctx context.Context, txFunc func(Store) error) error
}

type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

var (
	_ Store         = (*Client)(nil)
	_ HealthChecker = (*Client)(nil)
)

// Client is a badger-backed Store. Operations outside WithTx each run in
// their own transaction.
type Client struct {
	db *badger.DB
}

// NewClient creates a new kv client over an open badger database.
func NewClient(db *badger.DB) *Client {
	return &Client{db: db}
}

func (c *Client) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		value, err = txnGet(txn, key)
		return err
	})
	return value, err
}

func (c *Client) Set(ctx context.Context, key, value []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (c *Client) Delete(ctx context.Context, key []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (c *Client) List(ctx context.Context, prefix []byte) ([]Entry, error) {
	var entries []Entry
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		entries, err = txnList(txn, prefix)
		return err
	})
	return entries, err
}

func (c *Client) WithTx(ctx context.Context, txFunc func(Store) error) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txFunc(&txWrapper{txn: txn})
	})
}

func (c *Client) IsHealthy(ctx context.Context) (bool, error) {
	if c.db.IsClosed() {
		return false, fmt.Errorf("badger db is closed")
	}
	return true, nil
}

// txWrapper adapts a badger transaction to the Store interface. Badger
// commits or discards the whole transaction, so nested WithTx calls just
// run in the enclosing one.
type txWrapper struct {
	txn *badger.Txn
}

func (t *txWrapper) Get(_ context.Context, key []byte) ([]byte, error) {
	return txnGet(t.txn, key)
}

func (t *txWrapper) Set(_ context.Context, key, value []byte) error {
	return t.txn.Set(key, value)
}

func (t *txWrapper) Delete(_ context.Context, key []byte) error {
	return t.txn.Delete(key)
}

func (t *txWrapper) List(_ context.Context, prefix []byte) ([]Entry, error) {
	return txnList(t.txn, prefix)
}

func (t *txWrapper) WithTx(_ context.Context, txFunc func(Store) error) error {
	return txFunc(t)
}

func txnGet(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get: %w", err)
	}

	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("badger value copy: %w", err)
	}
	return value, nil
}

func txnList(txn *badger.Txn, prefix []byte) ([]Entry, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var entries []Entry
	for it.Seek(prefix); it.Valid(); it.Next() {
		item := it.Item()
		if !bytes.HasPrefix(item.Key(), prefix) {
			break
		}

		value, err := item.ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf("badger value copy: %w", err)
		}
		entries = append(entries, Entry{
			Key:   item.KeyCopy(nil),
			Value: value,
		})
	}

	return entries, nil
}
