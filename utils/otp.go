// utils/otp.go
package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrTooManyAttempts is returned when an email has exceeded its hourly
// verification attempt budget.
var ErrTooManyAttempts = errors.New("too many OTP attempts")

// GenerateOTP returns a random numeric code of the given length.
// Leading zeros are allowed, so the result is always a string.
func GenerateOTP(length int) (string, error) {
	const digits = "0123456789"
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		result[i] = digits[num.Int64()]
	}
	return string(result), nil
}

// ValidateOTPAttempts throttles verification attempts per email.
// Limited to 5 attempts per hour, tracked in Redis.
func ValidateOTPAttempts(ctx context.Context, email string, rdb *redis.Client) error {
	key := "otp_attempts:" + email
	attempts, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return err
	}

	// Set expiry if first attempt
	if attempts == 1 {
		rdb.Expire(ctx, key, 1*time.Hour)
	}

	if attempts > 5 {
		return ErrTooManyAttempts
	}

	return nil
}
