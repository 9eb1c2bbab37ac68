// Package progression holds the level-up card engine, the armory of persistent
// equipment, and the player profile they both feed.
package progression

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/tomz197/soulstaff/internal/stat"
	"gopkg.in/yaml.v3"
)

//go:embed content/*.yaml
var contentFS embed.FS

// ErrInvalidContent is returned when a content document fails validation.
var ErrInvalidContent = errors.New("invalid content")

// Rarity is the draw class of a card or the tier of an item.
type Rarity string

const (
	Common    Rarity = "common"
	Uncommon  Rarity = "uncommon"
	Epic      Rarity = "epic"
	Ascension Rarity = "ascension"
)

func (r Rarity) valid() bool {
	switch r {
	case Common, Uncommon, Epic, Ascension:
		return true
	}
	return false
}

// Slot is where an item is worn.
type Slot string

const (
	SlotHat   Slot = "hat"
	SlotStaff Slot = "staff"
)

// Card is a level-up upgrade.
type Card struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Rarity      Rarity          `yaml:"rarity"`
	Stackable   bool            `yaml:"stackable"`
	MaxStacks   int             `yaml:"maxStacks"`
	Description string          `yaml:"description"`
	Effects     []stat.Modifier `yaml:"effects"`
}

// Limit returns how many times the card can be acquired in one run.
func (c Card) Limit() int {
	if !c.Stackable {
		return 1
	}
	return c.MaxStacks
}

// UnlockRule is a threshold over one lifetime statistic.
type UnlockRule struct {
	Stat      string  `yaml:"stat"`
	Threshold float64 `yaml:"threshold"`
}

// Equipment is a persistent armory item.
type Equipment struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Slot        Slot            `yaml:"slot"`
	Rarity      Rarity          `yaml:"rarity"`
	Cost        int             `yaml:"cost"`
	Unlock      *UnlockRule     `yaml:"unlock"`
	Description string          `yaml:"description"`
	Effects     []stat.Modifier `yaml:"effects"`
}

// Synergy is a bonus for wearing a hat together with a staff.
type Synergy struct {
	Hat     string          `yaml:"hat"`
	Staff   string          `yaml:"staff"`
	Name    string          `yaml:"name"`
	Effects []stat.Modifier `yaml:"effects"`
}

type itemPair struct{ hat, staff string }

// Catalog is the validated content of a game: cards, equipment and synergies.
type Catalog struct {
	cards     []Card
	cardIndex map[string]int
	items     []Equipment
	itemIndex map[string]int
	synergies map[itemPair]Synergy

	// Duplicates lists card ids that were defined more than once.
	// The last definition wins.
	Duplicates []string
}

type cardsFile struct {
	Cards []Card `yaml:"cards"`
}

type equipmentFile struct {
	Equipment []Equipment `yaml:"equipment"`
	Synergies []Synergy   `yaml:"synergies"`
}

// DefaultCatalog loads the built-in content.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(contentFS, "content")
}

// LoadCatalog reads cards.yaml and equipment.yaml from dir in fsys.
func LoadCatalog(fsys fs.FS, dir string) (*Catalog, error) {
	cardsData, err := fs.ReadFile(fsys, path.Join(dir, "cards.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to read cards: %w", err)
	}
	equipmentData, err := fs.ReadFile(fsys, path.Join(dir, "equipment.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to read equipment: %w", err)
	}
	return ParseCatalog(cardsData, equipmentData)
}

// ParseCatalog decodes and validates card and equipment documents.
func ParseCatalog(cardsData, equipmentData []byte) (*Catalog, error) {
	var cf cardsFile
	if err := yaml.Unmarshal(cardsData, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse cards: %w", err)
	}
	var ef equipmentFile
	if err := yaml.Unmarshal(equipmentData, &ef); err != nil {
		return nil, fmt.Errorf("failed to parse equipment: %w", err)
	}

	c := &Catalog{
		cardIndex: make(map[string]int, len(cf.Cards)),
		itemIndex: make(map[string]int, len(ef.Equipment)),
		synergies: make(map[itemPair]Synergy, len(ef.Synergies)),
	}

	for _, card := range cf.Cards {
		if err := validateCard(card); err != nil {
			return nil, fmt.Errorf("card %q: %w", card.ID, err)
		}
		if i, ok := c.cardIndex[card.ID]; ok {
			c.cards[i] = card
			c.Duplicates = append(c.Duplicates, card.ID)
			continue
		}
		c.cardIndex[card.ID] = len(c.cards)
		c.cards = append(c.cards, card)
	}

	for _, item := range ef.Equipment {
		if err := validateItem(item); err != nil {
			return nil, fmt.Errorf("item %q: %w", item.ID, err)
		}
		if _, ok := c.itemIndex[item.ID]; ok {
			return nil, fmt.Errorf("item %q: %w: duplicate id", item.ID, ErrInvalidContent)
		}
		c.itemIndex[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}

	for _, s := range ef.Synergies {
		hat, ok := c.Item(s.Hat)
		if !ok || hat.Slot != SlotHat {
			return nil, fmt.Errorf("synergy %q: %w: %q is not a hat", s.Name, ErrInvalidContent, s.Hat)
		}
		staff, ok := c.Item(s.Staff)
		if !ok || staff.Slot != SlotStaff {
			return nil, fmt.Errorf("synergy %q: %w: %q is not a staff", s.Name, ErrInvalidContent, s.Staff)
		}
		c.synergies[itemPair{s.Hat, s.Staff}] = s
	}

	return c, nil
}

func validateCard(card Card) error {
	switch {
	case card.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidContent)
	case !card.Rarity.valid():
		return fmt.Errorf("%w: unknown rarity %q", ErrInvalidContent, card.Rarity)
	case card.Stackable && card.MaxStacks < 1:
		return fmt.Errorf("%w: stackable card needs maxStacks >= 1", ErrInvalidContent)
	case len(card.Effects) == 0:
		return fmt.Errorf("%w: card has no effects", ErrInvalidContent)
	}
	return nil
}

func validateItem(item Equipment) error {
	switch {
	case item.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidContent)
	case item.Slot != SlotHat && item.Slot != SlotStaff:
		return fmt.Errorf("%w: unknown slot %q", ErrInvalidContent, item.Slot)
	case !item.Rarity.valid():
		return fmt.Errorf("%w: unknown rarity %q", ErrInvalidContent, item.Rarity)
	case item.Cost < 0:
		return fmt.Errorf("%w: negative cost", ErrInvalidContent)
	}
	if item.Unlock != nil {
		if _, ok := (Statistics{}).Get(item.Unlock.Stat); !ok {
			return fmt.Errorf("%w: unknown unlock statistic %q", ErrInvalidContent, item.Unlock.Stat)
		}
	}
	return nil
}

// Cards returns every card in definition order.
func (c *Catalog) Cards() []Card {
	return c.cards
}

// Card looks up a card by id.
func (c *Catalog) Card(id string) (Card, bool) {
	i, ok := c.cardIndex[id]
	if !ok {
		return Card{}, false
	}
	return c.cards[i], true
}

// Items returns every equipment item in definition order.
func (c *Catalog) Items() []Equipment {
	return c.items
}

// Item looks up an equipment item by id.
func (c *Catalog) Item(id string) (Equipment, bool) {
	i, ok := c.itemIndex[id]
	if !ok {
		return Equipment{}, false
	}
	return c.items[i], true
}

// Synergy returns the bonus for a hat and staff pair.
func (c *Catalog) Synergy(hat, staff string) (Synergy, bool) {
	s, ok := c.synergies[itemPair{hat, staff}]
	return s, ok
}
