package signature

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	codeTTL         = 10 * time.Minute
	maxTentatives   = 5
	codeKeyPrefix   = "signature:code:"
	essaisKeyPrefix = "signature:essais:"
)

// SMSSender delivers the verification code to the signer's mobile.
type SMSSender interface {
	SendCode(ctx context.Context, telephone, code string) error
}

// LogSMSSender writes the SMS to the log instead of a gateway. It backs
// development and doubles as the fallback when no provider is configured.
type LogSMSSender struct {
	Logger *slog.Logger
}

func (s *LogSMSSender) SendCode(_ context.Context, telephone, code string) error {
	s.Logger.Info("SMS de vérification",
		slog.String("telephone", telephone),
		slog.String("code", code))
	return nil
}

// CodeStore keeps the short-lived verification codes in Redis so any API
// instance can verify a code issued by another.
type CodeStore struct {
	rdb *redis.Client
}

func NewCodeStore(rdb *redis.Client) *CodeStore {
	return &CodeStore{rdb: rdb}
}

// Issue generates a fresh 6-digit code for the link and resets the attempt
// counter. Re-issuing replaces any previous code.
func (s *CodeStore) Issue(ctx context.Context, token string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("génération du code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, codeKeyPrefix+token, code, codeTTL)
	pipe.Set(ctx, essaisKeyPrefix+token, 0, codeTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks the submitted code in constant time. After maxTentatives
// failures the code is invalidated and a new one must be requested.
func (s *CodeStore) Verify(ctx context.Context, token, submitted string) error {
	attendu, err := s.rdb.Get(ctx, codeKeyPrefix+token).Result()
	if err == redis.Nil {
		return ErrCodeInvalide
	}
	if err != nil {
		return err
	}

	essais, err := s.rdb.Incr(ctx, essaisKeyPrefix+token).Result()
	if err != nil {
		return err
	}
	if essais > maxTentatives {
		s.rdb.Del(ctx, codeKeyPrefix+token, essaisKeyPrefix+token)
		return ErrTropDeTentatives
	}

	if subtle.ConstantTimeCompare([]byte(attendu), []byte(submitted)) != 1 {
		return ErrCodeInvalide
	}

	s.rdb.Del(ctx, codeKeyPrefix+token, essaisKeyPrefix+token)
	return nil
}
