package service

import (
	"context"
	"sync"
	"time"

	dErrors "medtransit/pkg/domain-errors"
)

// StoreTx provides the transactional boundary for transfer store mutations.
// Implementations may wrap a database transaction or, in memory, a sharded lock.
// fn must use the ctx it is given so store calls join the transaction.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

// scheduleWritesKey serialises every schedule create/update in memory, since
// conflict checks read across schedules.
const scheduleWritesKey = "schedules"

// numTxShards distributes per-schedule transactions across independent locks.
const numTxShards = 128

// defaultTxTimeout bounds a transaction when the caller set no deadline.
const defaultTxTimeout = 5 * time.Second

type txKey struct{}

// WithTxKey names the lock shard a memory transaction on ctx should use.
// Postgres transactions ignore it.
func WithTxKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, txKey{}, key)
}

type shardedTx struct {
	shards  [numTxShards]sync.Mutex
	store   Store
	timeout time.Duration
}

// NewMemoryTx serialises transactions that share a key (see WithTxKey).
func NewMemoryTx(store Store) StoreTx {
	return &shardedTx{store: store}
}

func (t *shardedTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := t.selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx, t.store)
}

func (t *shardedTx) selectShard(ctx context.Context) int {
	if key, ok := ctx.Value(txKey{}).(string); ok && key != "" {
		return int(fnv1a(key) % numTxShards)
	}
	return 0
}

func fnv1a(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
