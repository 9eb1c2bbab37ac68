package progression

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownItem       = errors.New("unknown item")
	ErrLocked            = errors.New("item is locked")
	ErrAlreadyOwned      = errors.New("item already owned")
	ErrInsufficientFunds = errors.New("not enough soul orbs")
	ErrNotOwned          = errors.New("item not owned")
)

// Satisfied reports whether stats meet the rule.
func (r UnlockRule) Satisfied(stats Statistics) bool {
	v, ok := stats.Get(r.Stat)
	return ok && v >= r.Threshold
}

// UnlockedBy returns the ids of every item whose unlock rule stats satisfy.
// Items without a rule are never listed.
func UnlockedBy(stats Statistics, catalog *Catalog) []string {
	var ids []string
	for _, item := range catalog.Items() {
		if item.Unlock != nil && item.Unlock.Satisfied(stats) {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// ItemStatus is how an item appears in the shop.
type ItemStatus int

const (
	ItemLocked ItemStatus = iota
	ItemForSale
	ItemOwned
	ItemEquipped
)

// ShopEntry pairs an item with its status for the shop listing.
type ShopEntry struct {
	Item   Equipment
	Status ItemStatus
}

// Armory applies shop actions to a profile. Invalid actions return an error
// and leave the profile untouched.
type Armory struct {
	catalog *Catalog
	profile *Profile
}

// NewArmory creates an armory over profile.
func NewArmory(catalog *Catalog, profile *Profile) *Armory {
	return &Armory{catalog: catalog, profile: profile}
}

// Profile returns the profile the armory mutates.
func (a *Armory) Profile() *Profile {
	return a.profile
}

// Available reports whether an item can be bought, ignoring funds.
func (a *Armory) Available(item Equipment) bool {
	return item.Unlock == nil || a.profile.HasUnlocked(item.ID)
}

// CheckUnlocks records every item stats newly unlock and returns their ids.
func (a *Armory) CheckUnlocks(stats Statistics) []string {
	var fresh []string
	for _, id := range UnlockedBy(stats, a.catalog) {
		if !a.profile.HasUnlocked(id) {
			a.profile.Unlocked = append(a.profile.Unlocked, id)
			fresh = append(fresh, id)
		}
	}
	return fresh
}

// Buy spends soul orbs on an unlocked item.
func (a *Armory) Buy(id string) error {
	item, ok := a.catalog.Item(id)
	switch {
	case !ok:
		return fmt.Errorf("%w: %q", ErrUnknownItem, id)
	case !a.Available(item):
		return fmt.Errorf("%w: %q", ErrLocked, id)
	case a.profile.Owns(id):
		return fmt.Errorf("%w: %q", ErrAlreadyOwned, id)
	case a.profile.SoulOrbs < item.Cost:
		return fmt.Errorf("%w: %q costs %d", ErrInsufficientFunds, id, item.Cost)
	}
	a.profile.SoulOrbs -= item.Cost
	a.profile.Owned = append(a.profile.Owned, id)
	return nil
}

// Equip wears an owned item in its slot, replacing what was there.
func (a *Armory) Equip(id string) error {
	item, ok := a.catalog.Item(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	if !a.profile.Owns(id) {
		return fmt.Errorf("%w: %q", ErrNotOwned, id)
	}
	switch item.Slot {
	case SlotHat:
		a.profile.Equipped.Hat = id
	case SlotStaff:
		a.profile.Equipped.Staff = id
	}
	return nil
}

// Unequip empties a slot.
func (a *Armory) Unequip(slot Slot) {
	switch slot {
	case SlotHat:
		a.profile.Equipped.Hat = ""
	case SlotStaff:
		a.profile.Equipped.Staff = ""
	}
}

// Loadout returns the equipped items.
func (a *Armory) Loadout() Loadout {
	return a.profile.Equipped
}

// Entries lists every item with its shop status, in catalog order.
func (a *Armory) Entries() []ShopEntry {
	items := a.catalog.Items()
	out := make([]ShopEntry, len(items))
	eq := a.profile.Equipped
	for i, item := range items {
		status := ItemLocked
		switch {
		case item.ID == eq.Hat || item.ID == eq.Staff:
			status = ItemEquipped
		case a.profile.Owns(item.ID):
			status = ItemOwned
		case a.Available(item):
			status = ItemForSale
		}
		out[i] = ShopEntry{Item: item, Status: status}
	}
	return out
}
