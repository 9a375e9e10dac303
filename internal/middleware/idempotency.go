package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	idempotencyHeader     = "Idempotency-Key"
	idempotencyReplayed   = "Idempotent-Replayed"
	idempotencyKeyPrefix  = "idempotency:"
	DefaultIdempotencyTTL = 24 * time.Hour
)

// storedResponse is a successful response kept for replay.
type storedResponse struct {
	Status      int             `json:"status"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
}

// responseCache keeps storedResponses in Redis.
type responseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// lookup returns nil, nil on a miss.
func (rc responseCache) lookup(ctx context.Context, key string) (*storedResponse, error) {
	raw, err := rc.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resp storedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (rc responseCache) store(ctx context.Context, key string, resp storedResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return rc.client.Set(ctx, key, raw, rc.ttl).Err()
}

// bodyRecorder tees the response body so it can be stored after the handler runs.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a mutating request repeated
// with the same Idempotency-Key. Only successful responses are stored, so a
// request that failed (payment not yet succeeded, store outage) re-executes.
// A nil client disables replay.
func Idempotency(client *redis.Client, ttl time.Duration, logger *logrus.Logger) gin.HandlerFunc {
	if client == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	cache := responseCache{client: client, ttl: ttl}

	return func(c *gin.Context) {
		clientKey := c.GetHeader(idempotencyHeader)
		if clientKey == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := idempotencyCacheKey(c, clientKey)

		prior, err := cache.lookup(ctx, key)
		if err != nil {
			logger.WithError(err).Warn("Idempotency lookup failed, executing request")
		}
		if prior != nil {
			c.Header(idempotencyReplayed, "true")
			c.Data(prior.Status, prior.ContentType, prior.Body)
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}

		err = cache.store(ctx, key, storedResponse{
			Status:      status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.buf.Bytes(),
		})
		if err != nil {
			logger.WithError(err).WithField("path", c.Request.URL.Path).Warn("Failed to store idempotent response")
		}
	}
}

func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// idempotencyCacheKey scopes a client key to the route and credential, so
// one caller can never replay another caller's response.
func idempotencyCacheKey(c *gin.Context, clientKey string) string {
	h := sha256.New()
	for _, part := range []string{c.Request.Method, c.Request.URL.Path, c.GetHeader("Authorization"), clientKey} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return idempotencyKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
