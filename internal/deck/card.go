package deck

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

const (
	MinRank = 1
	MaxRank = 9
)

// Card is a single study card. Cards are values; identity is carried by ID
// alone, so two cards with the same ID are the same card regardless of rank
// or completion state.
type Card struct {
	ID         uuid.UUID
	Rank       int
	IsComplete bool
}

// NewCard creates a card with a fresh ID and a rank drawn uniformly from
// [MinRank, MaxRank].
func NewCard(rng *rand.Rand) Card {
	return Card{
		ID:   uuid.New(),
		Rank: MinRank + rng.Intn(MaxRank-MinRank+1),
	}
}

// RankUp returns a copy of the card with its rank incremented, wrapping
// MaxRank back to MinRank.
func (c Card) RankUp() Card {
	c.Rank++
	if c.Rank > MaxRank {
		c.Rank = MinRank
	}
	return c
}

// Same reports whether two cards share an identity.
func (c Card) Same(other Card) bool {
	return c.ID == other.ID
}

func (c Card) String() string {
	mark := ""
	if c.IsComplete {
		mark = "*"
	}
	return fmt.Sprintf("%d%s[%s]", c.Rank, mark, c.ID.String()[:8])
}
