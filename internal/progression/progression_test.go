package progression

import (
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/tomz197/soulstaff/internal/stat"
)

type constRand float64

func (r constRand) Float64() float64 { return float64(r) }
func (r constRand) Intn(n int) int   { return int(float64(r) * float64(n)) }

const testCards = `
cards:
  - id: power
    name: Power
    rarity: common
    stackable: true
    maxStacks: 2
    effects:
      - {stat: damage, op: add, value: 3}
  - id: cold
    name: Cold
    rarity: uncommon
    effects:
      - {stat: slowOnHit, op: set, value: 0.4}
  - id: power
    name: Greater Power
    rarity: common
    stackable: true
    maxStacks: 3
    effects:
      - {stat: damage, op: add, value: 5}
  - id: god
    name: God
    rarity: ascension
    effects:
      - {stat: damage, op: mul, value: 100}
`

const testEquipment = `
equipment:
  - id: hat
    name: Hat
    slot: hat
    rarity: common
    cost: 10
    effects:
      - {stat: damage, op: mul, value: 2}
  - id: staff
    name: Staff
    slot: staff
    rarity: common
    cost: 30
    unlock: {stat: kills, threshold: 50}
    effects:
      - {stat: damage, op: add, value: 1}
synergies:
  - hat: hat
    staff: staff
    name: Pair
    effects:
      - {stat: damage, op: mul, value: 10}
`

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := ParseCatalog([]byte(testCards), []byte(testEquipment))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	return c
}

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	if len(c.Duplicates) != 0 {
		t.Fatalf("built-in cards repeat ids: %v", c.Duplicates)
	}
	counts := map[Rarity]int{}
	for _, card := range c.Cards() {
		counts[card.Rarity]++
	}
	for _, r := range []Rarity{Common, Uncommon, Epic, Ascension} {
		if counts[r] == 0 {
			t.Errorf("no %s cards", r)
		}
	}
	if _, ok := c.Card("foresight"); !ok {
		t.Error("foresight card missing")
	}
	for _, item := range c.Items() {
		if item.Slot != SlotHat && item.Slot != SlotStaff {
			t.Errorf("item %q has slot %q", item.ID, item.Slot)
		}
	}
}

func TestDuplicateCardLastWins(t *testing.T) {
	c := testCatalog(t)
	if !slices.Equal(c.Duplicates, []string{"power"}) {
		t.Fatalf("Duplicates = %v, want [power]", c.Duplicates)
	}
	card, ok := c.Card("power")
	if !ok || card.Name != "Greater Power" || card.MaxStacks != 3 {
		t.Fatalf("power = %+v, want the last definition", card)
	}
	if len(c.Cards()) != 3 {
		t.Fatalf("cards = %d, want 3", len(c.Cards()))
	}
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name      string
		cards     string
		equipment string
		invalid   bool
	}{
		{
			name:    "unknown rarity",
			cards:   "cards:\n  - {id: x, rarity: mythic, effects: [{stat: damage, op: add, value: 1}]}\n",
			invalid: true,
		},
		{
			name:    "stackable without stacks",
			cards:   "cards:\n  - {id: x, rarity: common, stackable: true, effects: [{stat: damage, op: add, value: 1}]}\n",
			invalid: true,
		},
		{
			name:    "missing id",
			cards:   "cards:\n  - {rarity: common, effects: [{stat: damage, op: add, value: 1}]}\n",
			invalid: true,
		},
		{
			name:  "unknown stat",
			cards: "cards:\n  - {id: x, rarity: common, effects: [{stat: mana, op: add, value: 1}]}\n",
		},
		{
			name:  "unknown op",
			cards: "cards:\n  - {id: x, rarity: common, effects: [{stat: damage, op: pow, value: 1}]}\n",
		},
		{
			name:      "unknown slot",
			equipment: "equipment:\n  - {id: ring, slot: finger, rarity: common}\n",
			invalid:   true,
		},
		{
			name:      "unknown unlock statistic",
			equipment: "equipment:\n  - {id: h, slot: hat, rarity: common, unlock: {stat: naps, threshold: 1}}\n",
			invalid:   true,
		},
		{
			name: "synergy slots swapped",
			equipment: "equipment:\n  - {id: h, slot: hat, rarity: common}\n  - {id: s, slot: staff, rarity: common}\n" +
				"synergies:\n  - {hat: s, staff: h, name: bad}\n",
			invalid: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, equipment := tt.cards, tt.equipment
			if cards == "" {
				cards = "cards: []\n"
			}
			if equipment == "" {
				equipment = "equipment: []\n"
			}
			_, err := ParseCatalog([]byte(cards), []byte(equipment))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.invalid && !errors.Is(err, ErrInvalidContent) {
				t.Fatalf("error %v is not ErrInvalidContent", err)
			}
		})
	}
}

func TestDrawRarity(t *testing.T) {
	for i := range 1000 {
		r := 0.70 * float64(i) / 1000
		if got := DrawRarity(r); got != Common {
			t.Fatalf("DrawRarity(%v) = %s, want common", r, got)
		}
	}
	tests := []struct {
		r    float64
		want Rarity
	}{
		{0.70, Common},
		{0.71, Uncommon},
		{0.95, Uncommon},
		{0.96, Epic},
		{0.999, Epic},
	}
	for _, tt := range tests {
		if got := DrawRarity(tt.r); got != tt.want {
			t.Errorf("DrawRarity(%v) = %s, want %s", tt.r, got, tt.want)
		}
	}
}

func TestOfferCommonDraws(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(c, constRand(0.3))
	offer := e.Offer(0)
	if len(offer) != 3 {
		t.Fatalf("offer size = %d, want 3", len(offer))
	}
	seen := map[string]bool{}
	for _, card := range offer {
		if card.Rarity != Common {
			t.Fatalf("offered %s card %q", card.Rarity, card.ID)
		}
		if seen[card.ID] {
			t.Fatalf("card %q offered twice", card.ID)
		}
		seen[card.ID] = true
	}
}

func TestOfferProperties(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(c, rand.New(rand.NewSource(7)))
	for range 200 {
		offer := e.Offer(1)
		if len(offer) != 4 {
			t.Fatalf("offer size = %d, want 4", len(offer))
		}
		seen := map[string]bool{}
		for _, card := range offer {
			if card.Rarity == Ascension {
				t.Fatalf("offered ascension card %q", card.ID)
			}
			if seen[card.ID] {
				t.Fatalf("card %q offered twice", card.ID)
			}
			seen[card.ID] = true
		}
	}
}

func TestOfferShrinksToPool(t *testing.T) {
	c := testCatalog(t)
	e := NewEngine(c, constRand(0.5))

	if got := len(e.Offer(5)); got != 2 {
		t.Fatalf("offer size = %d, want the 2 eligible cards", got)
	}
	if _, err := e.Apply("cold"); err != nil {
		t.Fatal(err)
	}
	offer := e.Offer(0)
	if len(offer) != 1 || offer[0].ID != "power" {
		t.Fatalf("offer = %v, want only power", offer)
	}
	for range 3 {
		if _, err := e.Apply("power"); err != nil {
			t.Fatal(err)
		}
	}
	if got := e.Offer(0); len(got) != 0 {
		t.Fatalf("offer = %v, want empty", got)
	}
}

func TestApply(t *testing.T) {
	c := testCatalog(t)
	e := NewEngine(c, constRand(0.5))

	if _, err := e.Apply("nope"); !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("unknown card: err = %v", err)
	}

	if _, err := e.Apply("cold"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Apply("cold"); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("unique twice: err = %v", err)
	}

	for i := range 5 {
		_, err := e.Apply("power")
		if i < 3 && err != nil {
			t.Fatalf("stack %d: %v", i+1, err)
		}
		if i >= 3 && !errors.Is(err, ErrMaxStacks) {
			t.Fatalf("stack %d: err = %v, want ErrMaxStacks", i+1, err)
		}
		if e.Stacks("power") > 3 {
			t.Fatal("stack count exceeded maxStacks")
		}
	}

	if len(e.Acquisitions()) != 4 {
		t.Fatalf("acquisitions = %d, want 4", len(e.Acquisitions()))
	}
	if !slices.Equal(e.Build(), []string{"cold", "power", "power", "power"}) {
		t.Fatalf("Build = %v", e.Build())
	}
}

func TestComposeOrder(t *testing.T) {
	c := testCatalog(t)
	e := NewEngine(c, constRand(0.5))
	if _, err := e.Apply("power"); err != nil {
		t.Fatal(err)
	}
	base := stat.NewBag(map[stat.Key]float64{stat.Damage: 10})

	tests := []struct {
		name    string
		loadout Loadout
		want    float64
	}{
		{"cards only", Loadout{}, 15},
		{"hat", Loadout{Hat: "hat"}, 30},
		{"staff", Loadout{Staff: "staff"}, 16},
		{"hat, staff and synergy", Loadout{Hat: "hat", Staff: "staff"}, 310},
		{"unknown ids", Loadout{Hat: "ghost", Staff: "ghost"}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(base, e.Acquisitions(), tt.loadout, c)
			if v := got.Get(stat.Damage); v != tt.want {
				t.Fatalf("damage = %v, want %v", v, tt.want)
			}
		})
	}
	if base.Get(stat.Damage) != 10 {
		t.Fatal("Compose modified the base bag")
	}
}

func TestSynergyShortensAbilities(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(c, constRand(0.5))
	if _, err := e.Apply("nova"); err != nil {
		t.Fatal(err)
	}
	base := stat.NewBag(map[stat.Key]float64{})

	tests := []struct {
		name    string
		loadout Loadout
		want    float64
	}{
		{"no synergy", Loadout{Hat: "wizardHat", Staff: "oakStaff"}, 4},
		{"arcane tempo", Loadout{Hat: "wizardHat", Staff: "runeStaff"}, 3.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(base, e.Acquisitions(), tt.loadout, c).Get(stat.NovaInterval)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("nova interval = %v, want %v", got, tt.want)
			}
		})
	}

	// Without the card the ability stays off.
	off := Compose(base, nil, Loadout{Hat: "wizardHat", Staff: "runeStaff"}, c)
	if off.Get(stat.NovaInterval) != 0 {
		t.Fatalf("nova interval = %v without the card", off.Get(stat.NovaInterval))
	}
}

func snapshot(p *Profile) Profile {
	cp := *p
	cp.Owned = slices.Clone(p.Owned)
	cp.Unlocked = slices.Clone(p.Unlocked)
	return cp
}

func equalProfiles(a, b Profile) bool {
	return a.SoulOrbs == b.SoulOrbs && a.Equipped == b.Equipped &&
		slices.Equal(a.Owned, b.Owned) && slices.Equal(a.Unlocked, b.Unlocked)
}

func TestArmoryInvalidActions(t *testing.T) {
	c := testCatalog(t)
	p := NewProfile()
	p.SoulOrbs = 20
	a := NewArmory(c, p)

	tests := []struct {
		name string
		act  func() error
		want error
	}{
		{"buy unknown", func() error { return a.Buy("crown") }, ErrUnknownItem},
		{"buy locked", func() error { return a.Buy("staff") }, ErrLocked},
		{"equip unknown", func() error { return a.Equip("crown") }, ErrUnknownItem},
		{"equip not owned", func() error { return a.Equip("hat") }, ErrNotOwned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := snapshot(p)
			if err := tt.act(); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !equalProfiles(before, snapshot(p)) {
				t.Fatal("profile changed on a rejected action")
			}
		})
	}
}

func TestArmoryFlow(t *testing.T) {
	c := testCatalog(t)
	p := NewProfile()
	p.SoulOrbs = 35
	a := NewArmory(c, p)

	if err := a.Buy("hat"); err != nil {
		t.Fatalf("Buy hat: %v", err)
	}
	if p.SoulOrbs != 25 || !p.Owns("hat") {
		t.Fatalf("after buy: orbs=%d owned=%v", p.SoulOrbs, p.Owned)
	}
	if err := a.Buy("hat"); !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("second buy: err = %v", err)
	}

	if got := a.CheckUnlocks(Statistics{Kills: 49}); len(got) != 0 {
		t.Fatalf("unlocked %v below the threshold", got)
	}
	if got := a.CheckUnlocks(Statistics{Kills: 50}); !slices.Equal(got, []string{"staff"}) {
		t.Fatalf("CheckUnlocks = %v, want [staff]", got)
	}
	if got := a.CheckUnlocks(Statistics{Kills: 80}); len(got) != 0 {
		t.Fatalf("unlocks are reported once, got %v", got)
	}

	before := snapshot(p)
	if err := a.Buy("staff"); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("poor buy: err = %v", err)
	}
	if !equalProfiles(before, snapshot(p)) {
		t.Fatal("profile changed on a rejected purchase")
	}

	p.SoulOrbs = 30
	if err := a.Buy("staff"); err != nil {
		t.Fatalf("Buy staff: %v", err)
	}
	for _, id := range []string{"hat", "staff"} {
		if err := a.Equip(id); err != nil {
			t.Fatalf("Equip %s: %v", id, err)
		}
	}
	if a.Loadout() != (Loadout{Hat: "hat", Staff: "staff"}) {
		t.Fatalf("Loadout = %+v", a.Loadout())
	}
	a.Unequip(SlotHat)
	if a.Loadout() != (Loadout{Staff: "staff"}) {
		t.Fatalf("after unequip: %+v", a.Loadout())
	}

	entries := a.Entries()
	if entries[0].Status != ItemOwned || entries[1].Status != ItemEquipped {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestStatisticsMerge(t *testing.T) {
	total := Statistics{Kills: 10, LevelReached: 8, Runs: 2}
	total.Merge(Statistics{Kills: 5, LevelReached: 3, Runs: 1, Jumps: 4})
	want := Statistics{Kills: 15, LevelReached: 8, Runs: 3, Jumps: 4}
	if total != want {
		t.Fatalf("Merge = %+v, want %+v", total, want)
	}
	if v, ok := total.Get("kills"); !ok || v != 15 {
		t.Fatalf("Get(kills) = %v, %v", v, ok)
	}
	if _, ok := total.Get("mana"); ok {
		t.Fatal("unknown statistic should not resolve")
	}
}
