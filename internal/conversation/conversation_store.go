package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	profileKeyPrefix = "profile:"
	flowKeyPrefix    = "flow:"
)

func profileKey(userID string) string {
	return profileKeyPrefix + userID
}

func flowKey(conversationID string) string {
	return flowKeyPrefix + conversationID
}

//go:generate mockgen -source=conversation_store.go -destination=mock/conversation_store_mock.go -package=mock
type Store interface {
	// LoadProfile returns the stored profile, or a fresh empty one when
	// the user has never been seen.
	LoadProfile(ctx context.Context, userID string) (*UserProfile, error)
	SaveProfile(ctx context.Context, userID string, profile *UserProfile) error
	// LoadFlow returns the stored flow, or a fresh idle one when the
	// conversation has never been seen.
	LoadFlow(ctx context.Context, conversationID string) (*ConversationFlow, error)
	SaveFlow(ctx context.Context, conversationID string, flow *ConversationFlow) error
}

type redisStore struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisStore(rdb *redis.Client, logger ...*zap.Logger) Store {
	l := zap.L().Named("conversation.store")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &redisStore{rdb: rdb, logger: l}
}

func (s *redisStore) LoadProfile(ctx context.Context, userID string) (*UserProfile, error) {
	profile := &UserProfile{}
	if err := s.load(ctx, profileKey(userID), profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *redisStore) SaveProfile(ctx context.Context, userID string, profile *UserProfile) error {
	return s.save(ctx, profileKey(userID), profile)
}

func (s *redisStore) LoadFlow(ctx context.Context, conversationID string) (*ConversationFlow, error) {
	flow := NewFlow()
	if err := s.load(ctx, flowKey(conversationID), flow); err != nil {
		return nil, err
	}
	return flow, nil
}

func (s *redisStore) SaveFlow(ctx context.Context, conversationID string, flow *ConversationFlow) error {
	return s.save(ctx, flowKey(conversationID), flow)
}

func (s *redisStore) load(ctx context.Context, key string, out any) error {
	raw, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		s.logger.Error("state load failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("load %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Error("state decode failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) save(ctx context.Context, key string, in any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := s.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		s.logger.Error("state save failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
