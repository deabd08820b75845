package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// Limiter фиксированная квота запросов на ключ за окно.
// Счётчик живёт в ключе ratelimit:<key>:<номер окна> и истекает вместе с окном.
type Limiter struct {
	rc     *redis.Client
	points int64
	window time.Duration
	now    func() time.Time
}

func NewLimiter(rc *redis.Client, points int, window time.Duration) *Limiter {
	return newLimiter(rc, points, window, time.Now)
}

func newLimiter(rc *redis.Client, points int, window time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		rc:     rc,
		points: int64(points),
		window: window,
		now:    now,
	}
}

// Allow возвращает разрешение и время до конца текущего окна
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	index := now.UnixNano() / int64(l.window)
	windowEnd := time.Unix(0, (index+1)*int64(l.window))
	remaining := windowEnd.Sub(now)

	redisKey := fmt.Sprintf("%s%s:%d", keyPrefix, key, index)

	var incr *redis.IntCmd
	_, err := l.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, remaining)
		return nil
	})
	if err != nil {
		return false, l.window, err
	}

	if incr.Val() > l.points {
		return false, remaining, nil
	}
	return true, 0, nil
}
