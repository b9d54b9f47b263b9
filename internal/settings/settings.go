package settings

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// Runtime setting keys recognized by the media pipeline. Admin-side
// writes land here; reads fall back to static config on a miss.
const (
	WatermarkEnabled        = "media_watermark_enabled"
	WatermarkSource         = "media_watermark_source"
	WatermarkSize           = "media_watermark_size"
	WatermarkOpacity        = "media_watermark_opacity"
	WatermarkPosition       = "media_watermark_position"
	WatermarkPositionX      = "watermark_position_x"
	WatermarkPositionY      = "watermark_position_y"
	DefaultPlaceholderImage = "media_default_placeholder_image"
	CDNEnabled              = "media_do_spaces_cdn_enabled"
	CDNCustomDomain         = "media_do_spaces_cdn_custom_domain"
)

const keyPrefix = "settings:"

// Store holds runtime-tunable settings in Redis so changes made in the
// admin UI take effect without a restart.
type Store struct {
	redis *redis.Client
}

// NewStore creates a settings store on top of an existing Redis client.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

// Get returns the stored value for key, or fallback when the key is
// absent or Redis is unreachable. Settings are advisory overrides;
// errors never propagate past this boundary.
func (s *Store) Get(ctx context.Context, key, fallback string) string {
	if s == nil || s.redis == nil {
		return fallback
	}

	value, err := s.redis.Get(ctx, keyPrefix+key).Result()
	if err != nil || value == "" {
		return fallback
	}

	return value
}

// GetBool reads a boolean setting ("1"/"true" are truthy).
func (s *Store) GetBool(ctx context.Context, key string, fallback bool) bool {
	value := s.Get(ctx, key, "")
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// GetFloat reads a numeric setting.
func (s *Store) GetFloat(ctx context.Context, key string, fallback float64) float64 {
	value := s.Get(ctx, key, "")
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// GetInt reads an integer setting.
func (s *Store) GetInt(ctx context.Context, key string, fallback int) int {
	value := s.Get(ctx, key, "")
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// Set stores a setting value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.redis.Set(ctx, keyPrefix+key, value, 0).Err()
}
