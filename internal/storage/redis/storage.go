package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	// Use transaction for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.Code), data, s.cfg.SessionTTL)
	pipe.ZAdd(ctx, sessionIndexKey(), redis.Z{Score: 0, Member: string(session.Code)})
	for _, id := range session.Participants() {
		pipe.SAdd(ctx, sessionsForIndexKey(id), string(session.Code))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, code model.RoomCode) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	return decodeSession(data)
}

func (s *Storage) DeleteSession(ctx context.Context, code model.RoomCode) error {
	session, err := s.GetSession(ctx, code)
	if errors.Is(err, model.ErrSessionNotFound) {
		return s.client.ZRem(ctx, sessionIndexKey(), string(code)).Err()
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(code))
	pipe.ZRem(ctx, sessionIndexKey(), string(code))
	for _, id := range session.Participants() {
		pipe.SRem(ctx, sessionsForIndexKey(id), string(code))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) SessionExists(ctx context.Context, code model.RoomCode) (bool, error) {
	exists, err := s.client.Exists(ctx, sessionKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	codes, err := s.client.ZRange(ctx, sessionIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.loadSessions(ctx, codes)
}

func (s *Storage) SessionsFor(ctx context.Context, id model.Identity) ([]*model.Session, error) {
	codes, err := s.client.SMembers(ctx, sessionsForIndexKey(id)).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(codes)
	return s.loadSessions(ctx, codes)
}

// loadSessions fetches sessions in the given order, skipping codes whose
// session has expired out from under the index
func (s *Storage) loadSessions(ctx context.Context, codes []string) ([]*model.Session, error) {
	if len(codes) == 0 {
		return []*model.Session{}, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = sessionKey(model.RoomCode(code))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		session, err := decodeSession([]byte(str))
		if err != nil {
			return nil, fmt.Errorf("decoding session %s: %w", codes[i], err)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func decodeSession(data []byte) (*model.Session, error) {
	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	if session.Hits == nil {
		session.Hits = map[model.Identity]int{}
	}
	return &session, nil
}

// Purge removes every session and index entry. Identities do not survive a
// restart, so sessions left behind by a previous process can never be played.
func (s *Storage) Purge(ctx context.Context) (int, error) {
	removed := 0
	for _, pattern := range []string{sessionKey("*"), keyPrefix + ":idx:*"} {
		iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return removed, err
		}
		if len(keys) == 0 {
			continue
		}
		n, err := s.client.Del(ctx, keys...).Result()
		if err != nil {
			return removed, err
		}
		removed += int(n)
	}
	return removed, nil
}
