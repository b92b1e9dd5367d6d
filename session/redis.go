package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"hotel-frontdesk/logger"
	"hotel-frontdesk/models"
)

// RedisStore writes each session twice, in one MULTI/EXEC: under
// checkin_<roomId> and as a field of the roomSessions hash. Entries that fail to decode are logged and
// skipped, never deleted.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (r *RedisStore) Get(ctx context.Context, roomID uint) (*models.CheckinSession, error) {
	data, err := r.rdb.Get(ctx, Key(roomID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", roomID, err)
	}

	var s models.CheckinSession
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		logger.WarnContext(ctx, "skipping corrupt checkin session", "key", Key(roomID), "error", err)
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *models.CheckinSession) error {
	if s == nil || s.RoomID == 0 {
		return fmt.Errorf("save session: missing room id")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", s.RoomID, err)
	}
	blob := string(data)

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, Key(s.RoomID), blob, 0)
		pipe.HSet(ctx, IndexKey, indexField(s.RoomID), blob)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session %d: %w", s.RoomID, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, roomID uint) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, Key(roomID))
		pipe.HDel(ctx, IndexKey, indexField(roomID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session %d: %w", roomID, err)
	}
	return nil
}

func indexField(roomID uint) string {
	return strconv.FormatUint(uint64(roomID), 10)
}

func (r *RedisStore) List(ctx context.Context) (map[uint]*models.CheckinSession, error) {
	entries, err := r.rdb.HGetAll(ctx, IndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make(map[uint]*models.CheckinSession, len(entries))
	for field, data := range entries {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			logger.WarnContext(ctx, "skipping session with bad room id", "field", field)
			continue
		}
		var s models.CheckinSession
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			logger.WarnContext(ctx, "skipping corrupt checkin session", "key", IndexKey, "field", field, "error", err)
			continue
		}
		out[uint(id)] = &s
	}
	return out, nil
}

// NewRedisClient parses url (redis:// form or a bare host:port) and pings the
// server once.
func NewRedisClient(ctx context.Context, url, password string, db int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	if password != "" {
		opts.Password = password
	}
	if db != 0 {
		opts.DB = db
	}
	opts.PoolSize = 20
	opts.MaxRetries = 3

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
