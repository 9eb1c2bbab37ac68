package progression

import "github.com/tomz197/soulstaff/internal/stat"

// Compose builds the effective stats of a run: base values, then every card
// pick in order, then the hat, the staff and their synergy. Unknown equipped
// ids are skipped. The result is not clamped.
func Compose(base *stat.Bag, acquisitions []Acquisition, loadout Loadout, catalog *Catalog) *stat.Bag {
	out := base.Clone()

	for _, a := range acquisitions {
		stat.ApplyAll(out, a.Card.Effects, a.Delta)
	}

	if hat, ok := catalog.Item(loadout.Hat); ok {
		stat.ApplyAll(out, hat.Effects, 1)
	}
	if staff, ok := catalog.Item(loadout.Staff); ok {
		stat.ApplyAll(out, staff.Effects, 1)
	}
	if syn, ok := catalog.Synergy(loadout.Hat, loadout.Staff); ok {
		stat.ApplyAll(out, syn.Effects, 1)
	}
	return out
}
