package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const IdempotencyHeader = "Idempotency-Key"

// IdempotencyStore remembers claimed request keys for a TTL.
type IdempotencyStore interface {
	// Claim records key and reports whether it was not already present.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) IdempotencyStore {
	return &redisStore{client: client}
}

func (s *redisStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return ok, nil
}

func (s *redisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

type memoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore keeps keys in process. Only suitable for a single API
// instance.
func NewMemoryStore(cleanup time.Duration) IdempotencyStore {
	return &memoryStore{cache: gocache.New(gocache.NoExpiration, cleanup)}
}

func (s *memoryStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := s.cache.Add(key, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *memoryStore) Release(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Idempotency rejects a repeat of the same request within ttl with 409. The
// request is identified by the Idempotency-Key header or, without it, by
// the SHA-256 of its content (see contentHash). A request that fails releases its key so the client
// can retry.
func Idempotency(store IdempotencyStore, ttl time.Duration, logger logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(IdempotencyHeader)
		if key == "" {
			key = "sha256:" + contentHash(c)
		}
		key = "idem:" + c.Path() + ":" + key

		ok, err := store.Claim(c.UserContext(), key, ttl)
		if err != nil {
			// Store outage should not block uploads.
			logger.WithError(err).Warn("⚠️  Idempotency store unavailable, skipping check")
			return c.Next()
		}
		if !ok {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Duplicate request",
				"code":  fiber.StatusConflict,
			})
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if relErr := store.Release(c.UserContext(), key); relErr != nil {
				logger.WithError(relErr).Warn("⚠️  Failed to release idempotency key")
			}
		}
		return err
	}
}

// contentHash hashes the uploaded files of a multipart request (field name,
// file name and bytes), so retries with a fresh boundary still match. Other
// requests hash the raw body.
func contentHash(c *fiber.Ctx) string {
	form, err := c.MultipartForm()
	if err != nil || len(form.File) == 0 {
		return bodyHash(c)
	}

	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	h := sha256.New()
	for _, field := range fields {
		for _, fh := range form.File[field] {
			fmt.Fprintf(h, "%s\x00%s\x00%d\x00", field, fh.Filename, fh.Size)
			if err := copyFile(h, fh); err != nil {
				return bodyHash(c)
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func copyFile(w io.Writer, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

func bodyHash(c *fiber.Ctx) string {
	sum := sha256.Sum256(c.Body())
	return hex.EncodeToString(sum[:])
}
