package holiday

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	calendarCacheKey = "holidays:calendar"
	calendarCacheTTL = time.Hour
)

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Service interface {
	// ListUpcoming returns holidays of the given type strictly after the
	// reference instant, in calendar order.
	ListUpcoming(ctx context.Context, typ string, after time.Time) ([]Holiday, error)
	// ListOnDates returns holidays of the given type whose date falls on
	// one of the given days. The time-of-day part of days is ignored.
	ListOnDates(ctx context.Context, typ string, days []time.Time) ([]Holiday, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &service{repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) ListUpcoming(ctx context.Context, typ string, after time.Time) ([]Holiday, error) {
	all, err := s.calendar(ctx)
	if err != nil {
		return nil, err
	}

	var out []Holiday
	for _, h := range all {
		if h.Type != typ {
			continue
		}
		on, err := h.On()
		if err != nil {
			s.logger.Warn("skipping malformed calendar entry",
				zap.String("name", h.Name),
				zap.String("date", h.Date),
			)
			continue
		}
		if after.Before(on) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *service) ListOnDates(ctx context.Context, typ string, days []time.Time) ([]Holiday, error) {
	all, err := s.calendar(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(days))
	for _, d := range days {
		wanted[d.Format(DateFormat)] = struct{}{}
	}

	var out []Holiday
	for _, h := range all {
		if h.Type != typ {
			continue
		}
		if _, ok := wanted[h.Date]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

// calendar loads the full calendar, preferring the Redis copy. The
// singleflight group keeps concurrent cache misses to a single file read.
func (s *service) calendar(ctx context.Context) ([]Holiday, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, calendarCacheKey).Result()
		if err == nil {
			var holidays []Holiday
			if err := json.Unmarshal([]byte(cached), &holidays); err == nil {
				return holidays, nil
			}
		}
	}

	v, err, _ := s.sf.Do(calendarCacheKey, func() (interface{}, error) {
		holidays, err := s.repo.All(ctx)
		if err != nil {
			return nil, err
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(holidays); err == nil {
				s.rdb.Set(ctx, calendarCacheKey, jsonData, calendarCacheTTL)
			}
		}

		return holidays, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]Holiday), nil
}
