package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/sharpcutlabs/booking-api/internal/models"
	"github.com/sharpcutlabs/booking-api/internal/schedule"
	"github.com/sharpcutlabs/booking-api/internal/usecase/availability"
)

// ScheduleCache caches the read-mostly availability inputs (weekly shifts
// and time blocks) per barber. Staleness here only affects candidate slot
// generation; the commit-time check always goes through the transaction-
// scoped repository, never this cache. Redis failures fall through to the
// source.
type ScheduleCache struct {
	rdb *redis.Client
	src availability.ScheduleSource
	ttl time.Duration
}

func NewScheduleCache(rdb *redis.Client, src availability.ScheduleSource, ttl time.Duration) *ScheduleCache {
	return &ScheduleCache{rdb: rdb, src: src, ttl: ttl}
}

func (c *ScheduleCache) WeeklyShifts(ctx context.Context, barberID uint) ([]models.Shift, error) {
	key := fmt.Sprintf("schedule:shifts:%d", barberID)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var shifts []models.Shift
		if json.Unmarshal(raw, &shifts) == nil {
			return shifts, nil
		}
	}

	shifts, err := c.src.WeeklyShifts(ctx, barberID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(shifts); err == nil {
		c.rdb.Set(ctx, key, raw, c.ttl)
	}
	return shifts, nil
}

func (c *ScheduleCache) BlocksFor(
	ctx context.Context,
	barberID uint,
	from time.Time,
	to time.Time,
) ([]schedule.Interval, error) {

	// Range-scoped entries are invalidated by bumping the per-barber
	// version rather than scanning for keys.
	ver, _ := c.rdb.Get(ctx, blocksVersionKey(barberID)).Int64()
	key := fmt.Sprintf("schedule:blocks:%d:v%d:%d-%d", barberID, ver, from.Unix(), to.Unix())

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var blocks []schedule.Interval
		if json.Unmarshal(raw, &blocks) == nil {
			return blocks, nil
		}
	}

	blocks, err := c.src.BlocksFor(ctx, barberID, from, to)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(blocks); err == nil {
		c.rdb.Set(ctx, key, raw, c.ttl)
	}
	return blocks, nil
}

// ActiveBookingIntervals is a pass-through: the ledger is the source of
// truth for taken slots and is never served stale.
func (c *ScheduleCache) ActiveBookingIntervals(
	ctx context.Context,
	barberID uint,
	from time.Time,
	to time.Time,
) ([]schedule.Interval, error) {
	return c.src.ActiveBookingIntervals(ctx, barberID, from, to)
}

// Invalidate drops the barber's cached schedule after a shift or time
// block write.
func (c *ScheduleCache) Invalidate(ctx context.Context, barberID uint) {
	c.rdb.Del(ctx, fmt.Sprintf("schedule:shifts:%d", barberID))
	c.rdb.Incr(ctx, blocksVersionKey(barberID))
}

func blocksVersionKey(barberID uint) string {
	return fmt.Sprintf("schedule:blocksver:%d", barberID)
}

var _ availability.ScheduleSource = (*ScheduleCache)(nil)
