package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// DefaultEtcdPrefix namespaces schema documents in a shared etcd cluster.
const DefaultEtcdPrefix = "/autoschema/schemas/"

// EtcdOptions configures the etcd connection.
type EtcdOptions struct {
	// Endpoints lists the cluster members (e.g., "localhost:2379").
	Endpoints []string

	// Prefix is prepended to every key; defaults to DefaultEtcdPrefix.
	Prefix string

	// DialTimeout bounds connection establishment; defaults to 5s.
	DialTimeout time.Duration
}

// EtcdStore implements Store on an etcd key space. Each document is the
// value under Prefix+key.
type EtcdStore struct {
	kv     clientv3.KV
	client *clientv3.Client
	prefix string
}

// NewEtcdStore connects to etcd and performs a health check read.
func NewEtcdStore(opts EtcdOptions) (*EtcdStore, error) {
	if len(opts.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints cannot be empty")
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   opts.Endpoints,
		DialTimeout: opts.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if _, err := cli.Get(ctx, "health-check"); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	s := NewEtcdStoreWithKV(cli, opts.Prefix)
	s.client = cli
	return s, nil
}

// NewEtcdStoreWithKV wraps an existing KV (a *clientv3.Client, a namespaced
// KV, or a test double). An empty prefix selects DefaultEtcdPrefix.
func NewEtcdStoreWithKV(kv clientv3.KV, prefix string) *EtcdStore {
	if prefix == "" {
		prefix = DefaultEtcdPrefix
	}
	return &EtcdStore{kv: kv, prefix: prefix}
}

func (s *EtcdStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	resp, err := s.kv.Get(ctx, s.prefix+key)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema %s: %w", key, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, notFound(key)
	}
	return resp.Kvs[0].Value, nil
}

func (s *EtcdStore) Put(ctx context.Context, key string, doc []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if _, err := s.kv.Put(ctx, s.prefix+key, string(doc)); err != nil {
		return fmt.Errorf("failed to store schema %s: %w", key, err)
	}
	return nil
}

func (s *EtcdStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	resp, err := s.kv.Delete(ctx, s.prefix+key)
	if err != nil {
		return fmt.Errorf("failed to delete schema %s: %w", key, err)
	}
	if resp.Deleted == 0 {
		return notFound(key)
	}
	return nil
}

func (s *EtcdStore) List(ctx context.Context) ([]string, error) {
	resp, err := s.kv.Get(ctx, s.prefix, clientv3.WithPrefix(), clientv3.WithKeysOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	keys := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		keys = append(keys, strings.TrimPrefix(string(kv.Key), s.prefix))
	}
	slices.Sort(keys)
	return keys, nil
}

// Close closes the client opened by NewEtcdStore. Stores built with
// NewEtcdStoreWithKV leave the KV to the caller.
func (s *EtcdStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
