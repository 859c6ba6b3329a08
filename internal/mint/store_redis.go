package mint

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"dropforge/pkg/domain"
	"dropforge/pkg/platform/sentinel"
)

// RedisStore keeps the hot mutable mint counters in Redis so multiple
// service replicas share one view of wallet counts and ownership.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func countKey(id domain.DropID, wallet domain.Account) string {
	return fmt.Sprintf("dropforge:mint:count:%d:%s", id, wallet.String())
}

func ownerKey(id domain.DropID, ordinal uint64) string {
	return fmt.Sprintf("dropforge:mint:owner:%d:%d", id, ordinal)
}

func mintedKey(wallet domain.Account) string {
	return fmt.Sprintf("dropforge:mint:minted:%s", wallet.String())
}

func (s *RedisStore) WalletCount(ctx context.Context, id domain.DropID, wallet domain.Account) (uint64, error) {
	val, err := s.client.Get(ctx, countKey(id, wallet)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get wallet count: %w", err)
	}
	count, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse wallet count %q: %w", val, err)
	}
	return count, nil
}

func (s *RedisStore) AddWalletCount(ctx context.Context, id domain.DropID, wallet domain.Account, quantity uint64) (uint64, error) {
	count, err := s.client.IncrBy(ctx, countKey(id, wallet), int64(quantity)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr wallet count: %w", err)
	}
	return uint64(count), nil
}

func (s *RedisStore) RecordOwnership(ctx context.Context, id domain.DropID, firstOrdinal, quantity uint64, wallet domain.Account) error {
	pipe := s.client.Pipeline()
	for i := uint64(0); i < quantity; i++ {
		pipe.Set(ctx, ownerKey(id, firstOrdinal+i), wallet.String(), 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record ownership: %w", err)
	}
	return nil
}

func (s *RedisStore) OwnerOf(ctx context.Context, id domain.DropID, ordinal uint64) (domain.Account, error) {
	val, err := s.client.Get(ctx, ownerKey(id, ordinal)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.ZeroAccount, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.ZeroAccount, fmt.Errorf("get owner: %w", err)
	}
	owner, err := domain.ParseAccount(val)
	if err != nil {
		return domain.ZeroAccount, fmt.Errorf("parse owner %q: %w", val, err)
	}
	return owner, nil
}

func (s *RedisStore) AppendMintedDrop(ctx context.Context, wallet domain.Account, id domain.DropID) error {
	if err := s.client.RPush(ctx, mintedKey(wallet), id.String()).Err(); err != nil {
		return fmt.Errorf("append minted drop: %w", err)
	}
	return nil
}

func (s *RedisStore) MintedDrops(ctx context.Context, wallet domain.Account) ([]domain.DropID, error) {
	vals, err := s.client.LRange(ctx, mintedKey(wallet), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list minted drops: %w", err)
	}
	ids := make([]domain.DropID, 0, len(vals))
	for _, val := range vals {
		id, err := domain.ParseDropID(val)
		if err != nil {
			return nil, fmt.Errorf("parse minted drop id %q: %w", val, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
