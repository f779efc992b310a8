package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// CodeTTL is how long an email verification code stays usable.
const CodeTTL = 10 * time.Minute

// VerificationCache stores email verification codes in Redis with a TTL.
// Keeping them out of process memory means codes survive restarts and are
// visible to every server instance behind the load balancer.
type VerificationCache struct {
	Client *redis.Client
}

func NewVerificationCache(client *redis.Client) *VerificationCache {
	return &VerificationCache{Client: client}
}

func codeKey(email string) string {
	return "verify_code:" + email
}

// StoreCode saves a code for an email address, replacing any previous one.
func (c *VerificationCache) StoreCode(ctx context.Context, email, code string) error {
	if err := c.Client.Set(ctx, codeKey(email), code, CodeTTL).Err(); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	return nil
}

// ConsumeCode atomically fetches and deletes the stored code, then compares
// it. GETDEL makes check-and-consume a single round trip, so a code can
// never be redeemed twice even by concurrent requests.
func (c *VerificationCache) ConsumeCode(ctx context.Context, email, code string) (bool, error) {
	stored, err := c.Client.GetDel(ctx, codeKey(email)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume verification code: %w", err)
	}
	return stored == code, nil
}
