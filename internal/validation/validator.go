package validation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/adaptix/adaptix/internal/config"
)

// Validator resolves site keys to site IDs against Postgres, with a redis
// cache in front, and enforces a per-site request rate limit.
type Validator struct {
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   config.RateLimitConfig
}

func NewValidator(pgCfg config.PostgresConfig, redisCfg config.RedisConfig, rlCfg config.RateLimitConfig) (*Validator, error) {
	db, err := pgxpool.New(context.Background(), pgCfg.DSN)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	return &Validator{
		db:    db,
		redis: rdb,
		cfg:   rlCfg,
	}, nil
}

// ValidateSiteKey resolves a site key to its site ID. Results are cached for
// five minutes keyed by the key prefix.
func (v *Validator) ValidateSiteKey(ctx context.Context, siteKey string) (string, error) {
	if len(siteKey) < 12 {
		return "", errors.New("invalid site key format")
	}

	cacheKey := "sitekey:" + siteKey[:12]
	siteID, err := v.redis.Get(ctx, cacheKey).Result()
	if err == nil {
		return siteID, nil
	}

	hash := sha256.Sum256([]byte(siteKey))
	keyHash := hex.EncodeToString(hash[:])

	var id string
	err = v.db.QueryRow(ctx, `
		SELECT site_id::text FROM site_keys
		WHERE key_hash = $1 AND is_active = true
		AND (expires_at IS NULL OR expires_at > NOW())
	`, keyHash).Scan(&id)
	if err != nil {
		return "", errors.New("invalid site key")
	}

	v.redis.Set(ctx, cacheKey, id, 5*time.Minute)

	go v.db.Exec(context.Background(), `
		UPDATE site_keys
		SET last_used_at = NOW(), request_count = request_count + 1
		WHERE key_hash = $1
	`, keyHash)

	return id, nil
}

// CheckRateLimit allows up to the configured requests per second per site.
// Errors fail open.
func (v *Validator) CheckRateLimit(siteID string) bool {
	ctx := context.Background()
	key := "ratelimit:" + siteID

	count, err := v.redis.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		v.redis.Expire(ctx, key, time.Second)
	}

	return count <= int64(v.cfg.RequestsPerSecond)
}

func (v *Validator) Close() {
	if v.db != nil {
		v.db.Close()
	}
	if v.redis != nil {
		v.redis.Close()
	}
}
