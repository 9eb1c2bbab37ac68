package game

import (
	"errors"

	"github.com/tomz197/soulstaff/internal/event"
	"github.com/tomz197/soulstaff/internal/progression"
)

// OpenArmory checks lifetime statistics for new unlocks and returns the shop
// listing. Only the menu has a shop.
func (s *Session) OpenArmory() ([]progression.ShopEntry, error) {
	if s.state != StateMenu {
		return nil, s.reject(ErrWrongState)
	}
	profile := s.armory.Profile()
	if ids := s.armory.CheckUnlocks(profile.Stats); len(ids) > 0 {
		for _, id := range ids {
			if item, ok := s.catalog.Item(id); ok {
				s.notify("Unlocked " + item.Name)
			}
		}
		s.SaveProfile()
	}
	return s.armory.Entries(), nil
}

// Shop returns the shop listing without checking unlocks.
func (s *Session) Shop() []progression.ShopEntry {
	return s.armory.Entries()
}

// Buy purchases an item with soul orbs.
func (s *Session) Buy(id string) error {
	if s.state != StateMenu {
		return s.reject(ErrWrongState)
	}
	if err := s.armory.Buy(id); err != nil {
		return s.reject(err)
	}
	item, _ := s.catalog.Item(id)
	s.notify("Bought " + item.Name)
	s.bus.Emit(event.Cue{Name: event.CuePurchase})
	s.SaveProfile()
	return nil
}

// Equip wears an owned item.
func (s *Session) Equip(id string) error {
	if s.state != StateMenu {
		return s.reject(ErrWrongState)
	}
	if err := s.armory.Equip(id); err != nil {
		return s.reject(err)
	}
	item, _ := s.catalog.Item(id)
	s.notify("Equipped " + item.Name)
	s.SaveProfile()
	return nil
}

// Unequip empties a slot.
func (s *Session) Unequip(slot progression.Slot) error {
	if s.state != StateMenu {
		return s.reject(ErrWrongState)
	}
	s.armory.Unequip(slot)
	s.SaveProfile()
	return nil
}

// Loadout returns the equipped hat and staff.
func (s *Session) Loadout() progression.Loadout {
	return s.armory.Loadout()
}

// reject shows err to the player and returns it.
func (s *Session) reject(err error) error {
	s.notify(describe(err))
	return err
}

// describe turns an action error into a short message for the player.
func describe(err error) string {
	switch {
	case errors.Is(err, ErrInvalidChoice):
		return "Pick one of the offered cards"
	case errors.Is(err, ErrWrongState):
		return "Not available right now"
	case errors.Is(err, progression.ErrUnknownItem):
		return "No such item"
	case errors.Is(err, progression.ErrLocked):
		return "Item is still locked"
	case errors.Is(err, progression.ErrAlreadyOwned):
		return "You already own that"
	case errors.Is(err, progression.ErrInsufficientFunds):
		return "Not enough soul orbs"
	case errors.Is(err, progression.ErrNotOwned):
		return "Buy it first"
	case errors.Is(err, progression.ErrMaxStacks), errors.Is(err, progression.ErrAlreadyApplied):
		return "Card cannot be taken again"
	}
	return err.Error()
}
