package nickname

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/S-Foxx/VN-Bot/storage"
)

// Pool supplies substitute name templates. Satisfied by *storage.Storage.
type Pool interface {
	RandomNickname(guildID int64) (*storage.Nickname, error)
}

// fallbackTemplates are used when the pool is unreachable or empty, so
// identity substitution degrades instead of blocking presence handling.
var fallbackTemplates = []string{"Subject", "Operator", "Naib"}

type Generator struct {
	pool Pool

	mu  sync.Mutex // guards rng, which is not safe for concurrent use
	rng *rand.Rand
}

func NewGenerator(pool Pool) *Generator {
	return &Generator{
		pool: pool,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate produces a display-ready substitute identity for the guild:
// a pool template followed by a random zero-padded counter in [001,999],
// e.g. "Subject 042". It never fails; pool errors and empty pools fall
// back to the built-in template list.
func (g *Generator) Generate(guildID int64) string {
	template := ""
	if g.pool != nil {
		nick, err := g.pool.RandomNickname(guildID)
		switch {
		case err != nil:
			slog.Warn("nickname: Pool unavailable, using fallback templates", "error", err, "guild_id", guildID)
		case nick == nil:
			slog.Warn("nickname: No nicknames configured for guild, using fallback templates", "guild_id", guildID)
		default:
			template = nick.Nickname
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if template == "" {
		template = fallbackTemplates[g.rng.Intn(len(fallbackTemplates))]
	}
	return fmt.Sprintf("%s %03d", template, 1+g.rng.Intn(999))
}
