// Package verify issues and checks short-lived verification codes for
// email-based flows such as password resets. Codes live in Redis under a
// purpose-scoped key and are consumed on first successful check.
package verify

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrInvalidCode = errors.New("invalid or expired code")

const codeTTL = 5 * time.Minute

// checkAndConsume deletes the key only when the stored code matches, so a
// code cannot be used twice even under concurrent confirms.
var checkAndConsume = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// Mailer delivers a verification code to a recipient. Real delivery is an
// external collaborator; see LogMailer for the local implementation.
type Mailer interface {
	SendCode(ctx context.Context, to, code string) error
}

type Service struct {
	client redis.Cmdable
	mailer Mailer
}

func NewService(client redis.Cmdable, mailer Mailer) *Service {
	return &Service{client: client, mailer: mailer}
}

// Send generates a 6-digit code, stores it for codeTTL and mails it.
// A repeated request overwrites the previous code.
func (s *Service) Send(ctx context.Context, purpose, target string) error {
	code := fmt.Sprintf("%06d", rand.Intn(1000000))
	if err := s.client.Set(ctx, key(purpose, target), code, codeTTL).Err(); err != nil {
		return err
	}
	return s.mailer.SendCode(ctx, target, code)
}

// Confirm checks the code for (purpose, target) and consumes it on success.
func (s *Service) Confirm(ctx context.Context, purpose, target, code string) error {
	ok, err := checkAndConsume.Run(ctx, s.client, []string{key(purpose, target)}, code).Int()
	if err != nil {
		return err
	}
	if ok != 1 {
		return ErrInvalidCode
	}
	return nil
}

func key(purpose, target string) string {
	return "verify:" + purpose + ":" + target
}
