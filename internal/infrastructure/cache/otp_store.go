package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soundclone/soundclone-api/internal/domain/repository"
	"github.com/soundclone/soundclone-api/pkg/helpers"
)

// consumeScript deletes KEYS[1] only when it holds ARGV[1], so two
// concurrent verifications of one code cannot both succeed.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type OTPStore struct {
	rdb redis.Cmdable
}

func NewOTPStore(rdb redis.Cmdable) *OTPStore {
	return &OTPStore{rdb: rdb}
}

func (s *OTPStore) AcquireCooldown(ctx context.Context, email string, window time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, helpers.KeyPasswordOTPCooldown(email), "1", window).Result()
}

func (s *OTPStore) SaveCode(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, helpers.KeyPasswordOTP(email), code, ttl).Err()
}

func (s *OTPStore) ConsumeCode(ctx context.Context, email, code string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.rdb, []string{helpers.KeyPasswordOTP(email)}, code).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *OTPStore) Discard(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, helpers.KeyPasswordOTP(email), helpers.KeyPasswordOTPCooldown(email)).Err()
}

var _ repository.OTPStore = (*OTPStore)(nil)
