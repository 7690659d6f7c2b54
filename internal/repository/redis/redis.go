package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/nezqt3/MiniAppShopTgBot/internal/repository"

	"github.com/redis/go-redis/v9"
)

// Storage раздаёт блокировки списаний по user_id. Проверка баланса перед
// списанием не атомарна относительно конкурентных списаний того же
// пользователя, поэтому Debit сериализуется внешним замком. Замок в Redis,
// а не в памяти процесса: сервис может работать в несколько инстансов.

type Storage struct {
	db       *redis.Client
	lockTTL  time.Duration
	lockWait time.Duration
}

const retryInterval = 50 * time.Millisecond

func InitRedis(connStr, redisPassword string, dbNumber int, lockTTL, lockWait time.Duration) (*Storage, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     connStr,
		Username: "",
		Password: redisPassword,
		DB:       dbNumber,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("storage.redis.Init: %w", err)
	}

	return &Storage{db: redisClient, lockTTL: lockTTL, lockWait: lockWait}, nil
}

// LockUser берёт замок списаний для userID и возвращает функцию снятия.
// Ожидание ограничено lockWait; замок сам истекает по lockTTL, чтобы упавший
// инстанс не держал пользователя заблокированным навсегда.
func (s *Storage) LockUser(ctx context.Context, userID int64) (func(), error) {
	const op = "storage.Redis.LockUser"

	key := fmt.Sprintf("points:debit:lock:%d", userID)

	ctx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	for {
		ok, err := s.db.SetNX(ctx, key, "1", s.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", op, repository.ErrStoreUnavailable, err)
		}
		if ok {
			unlock := func() {
				_ = s.db.Del(context.Background(), key).Err()
			}
			return unlock, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w: %v", op, repository.ErrStoreUnavailable, ctx.Err())
		case <-time.After(retryInterval):
		}
	}
}
