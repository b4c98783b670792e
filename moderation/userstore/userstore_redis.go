package userstore

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

var redisUserPrefix string = "user/"

type RedisUserStore struct {
	Client *redis.Client
}

func NewRedisUserStore(redisURL string) (*RedisUserStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisUserStore{Client: rdb}, nil
}

func (s *RedisUserStore) GetUser(ctx context.Context, userID string) (*UserRecord, error) {
	raw, err := s.Client.Get(ctx, redisUserPrefix+userID).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var rec UserRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisUserStore) PutUser(ctx context.Context, rec *UserRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	// no expiration: moderation state is retained indefinitely
	return s.Client.Set(ctx, redisUserPrefix+rec.UserID, raw, 0).Err()
}
