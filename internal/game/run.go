package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/tomz197/soulstaff/internal/event"
	"github.com/tomz197/soulstaff/internal/progression"
	"github.com/tomz197/soulstaff/internal/stat"
	"github.com/tomz197/soulstaff/internal/storage"
)

// OfferOpen reports whether a card offer waits for a choice.
func (s *Session) OfferOpen() bool {
	return len(s.offer) > 0
}

// openOffer draws cards for the next pending level. Levels for which no card
// is left are dropped.
func (s *Session) openOffer() {
	s.offer = nil
	for s.pending > 0 {
		if offer := s.engine.Offer(s.player.Stats.Int(stat.ExtraCardOptions)); len(offer) > 0 {
			s.offer = offer
			return
		}
		s.pending--
	}
}

// closeOffer settles one pending level and opens the next offer, if any.
func (s *Session) closeOffer() {
	s.offer = nil
	s.pending = max(0, s.pending-1)
	s.openOffer()
}

// ChooseCard takes the i-th card (zero-based) of the open offer.
func (s *Session) ChooseCard(i int) error {
	if s.state != StatePlaying || !s.OfferOpen() {
		return s.reject(fmt.Errorf("%w: no offer open", ErrInvalidChoice))
	}
	if i < 0 || i >= len(s.offer) {
		return s.reject(fmt.Errorf("%w: %d of %d", ErrInvalidChoice, i+1, len(s.offer)))
	}

	card := s.offer[i]
	if _, err := s.engine.Apply(card.ID); err != nil {
		s.logger.Warn("offered card cannot be applied", "card", card.ID, "err", err)
		return s.reject(err)
	}
	s.player.ApplyStats(s.compose())
	s.bus.Emit(event.Cue{Name: event.CueUpgradeSelected})
	s.notify(card.Name + ": " + card.Description)
	s.closeOffer()
	return nil
}

// SkipCard gives up the card of one level.
func (s *Session) SkipCard() error {
	if s.state != StatePlaying || !s.OfferOpen() {
		return s.reject(fmt.Errorf("%w: no offer open", ErrInvalidChoice))
	}
	s.closeOffer()
	return nil
}

// runStats returns the statistics of the current run.
func (s *Session) runStats() progression.Statistics {
	p := s.player
	return progression.Statistics{
		DamageTaken:       p.DamageTaken,
		Jumps:             p.Jumps,
		Kills:             s.kills,
		ProjectilesFired:  p.ProjectilesFired,
		LevelReached:      p.Level,
		Runs:              1,
		SoulOrbsCollected: s.runOrbs,
		SurvivalSeconds:   int(s.elapsed / time.Second),
	}
}

// finishRun records the run: ranking, lifetime statistics, soul orbs and
// unlocks. Storage errors are logged and never stop the session.
func (s *Session) finishRun(at time.Duration) {
	run := storage.RunSummary{
		Name:         s.name,
		Score:        s.Score(),
		Level:        s.player.Level,
		SurvivalTime: at,
		Kills:        s.kills,
		SoulOrbs:     s.runOrbs,
		Build:        s.engine.Build(),
		FinishedAt:   time.Now().UTC(),
	}
	s.lastRun = &run

	if top, err := s.ranking.Submit(run); err != nil {
		s.logger.Error("failed to submit run", "err", err)
	} else {
		s.top = top
		i := slices.IndexFunc(top, func(r storage.RunSummary) bool {
			return r.Name == run.Name && r.Score == run.Score && r.FinishedAt.Equal(run.FinishedAt)
		})
		if i >= 0 {
			run.Seq = top[i].Seq
		}
		switch {
		case i == 0:
			s.notify("New high score!")
		case i > 0:
			s.notify(fmt.Sprintf("Ranked #%d", i+1))
		}
	}

	profile := s.armory.Profile()
	profile.SoulOrbs += s.runOrbs
	profile.Stats.Merge(s.runStats())
	s.newUnlocks = s.armory.CheckUnlocks(profile.Stats)
	for _, id := range s.newUnlocks {
		if item, ok := s.catalog.Item(id); ok {
			s.notify("Unlocked " + item.Name)
		}
	}
	s.SaveProfile()

	s.logger.Info("run finished",
		"name", run.Name,
		"score", run.Score,
		"level", run.Level,
		"kills", run.Kills,
		"time", run.SurvivalTime.Round(time.Second),
	)
}
