package progression

import (
	"errors"
	"fmt"

	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/physics"
)

var (
	ErrUnknownCard    = errors.New("unknown card")
	ErrAlreadyApplied = errors.New("card already applied")
	ErrMaxStacks      = errors.New("card is at max stacks")
)

// maxDrawAttempts bounds rarity resampling for one offer slot.
const maxDrawAttempts = 10

// DrawRarity maps a uniform draw r in [0, 1) to a card rarity.
// Ascension is never drawn.
func DrawRarity(r float64) Rarity {
	switch {
	case r <= config.RarityCommonMax:
		return Common
	case r <= config.RarityUncommonMax:
		return Uncommon
	}
	return Epic
}

// Acquisition records one card pick. Delta is the number of stacks it added.
type Acquisition struct {
	Card  Card
	Delta int
}

// Engine tracks the cards taken during one run and draws level-up offers.
type Engine struct {
	catalog      *Catalog
	rng          physics.Rand
	stacks       map[string]int
	acquisitions []Acquisition
}

// NewEngine creates an engine with no cards taken.
func NewEngine(catalog *Catalog, rng physics.Rand) *Engine {
	return &Engine{
		catalog: catalog,
		rng:     rng,
		stacks:  make(map[string]int),
	}
}

// Stacks returns how many times the card was taken.
func (e *Engine) Stacks(id string) int {
	return e.stacks[id]
}

// Acquisitions returns every pick in order. The slice must not be modified.
func (e *Engine) Acquisitions() []Acquisition {
	return e.acquisitions
}

// Build returns the ids of the picked cards in order.
func (e *Engine) Build() []string {
	ids := make([]string, len(e.acquisitions))
	for i, a := range e.acquisitions {
		ids[i] = a.Card.ID
	}
	return ids
}

func (e *Engine) eligible(c Card) bool {
	return c.Rarity != Ascension && e.stacks[c.ID] < c.Limit()
}

// Offer draws up to BaseCardOptions+extra distinct eligible cards. Each slot
// draws a rarity and then a card of that rarity; when no card of the drawn
// rarity is left after a few attempts, any eligible card is taken.
func (e *Engine) Offer(extra int) []Card {
	var pool []Card
	for _, c := range e.catalog.Cards() {
		if e.eligible(c) {
			pool = append(pool, c)
		}
	}
	n := min(config.BaseCardOptions+max(0, extra), len(pool))

	offer := make([]Card, 0, n)
	picked := make(map[string]bool, n)
	candidates := make([]Card, 0, len(pool))

	filter := func(match func(Card) bool) []Card {
		candidates = candidates[:0]
		for _, c := range pool {
			if !picked[c.ID] && match(c) {
				candidates = append(candidates, c)
			}
		}
		return candidates
	}

	for len(offer) < n {
		var list []Card
		for range maxDrawAttempts {
			rarity := DrawRarity(e.rng.Float64())
			if list = filter(func(c Card) bool { return c.Rarity == rarity }); len(list) > 0 {
				break
			}
		}
		if len(list) == 0 {
			list = filter(func(Card) bool { return true })
		}
		c := list[e.rng.Intn(len(list))]
		picked[c.ID] = true
		offer = append(offer, c)
	}
	return offer
}

// Apply takes one stack of a card. On error nothing changes.
func (e *Engine) Apply(id string) (Acquisition, error) {
	card, ok := e.catalog.Card(id)
	if !ok {
		return Acquisition{}, fmt.Errorf("%w: %q", ErrUnknownCard, id)
	}
	if e.stacks[id] >= card.Limit() {
		if !card.Stackable {
			return Acquisition{}, fmt.Errorf("%w: %q", ErrAlreadyApplied, id)
		}
		return Acquisition{}, fmt.Errorf("%w: %q", ErrMaxStacks, id)
	}
	e.stacks[id]++
	a := Acquisition{Card: card, Delta: 1}
	e.acquisitions = append(e.acquisitions, a)
	return a, nil
}
