package simulation

import (
	"slices"

	"go.uber.org/zap"

	"mockchat/internal/models"
	"mockchat/internal/observability"
)

const presenceKey = "presence"

// PresenceStore is the part of the store the presence simulation needs.
type PresenceStore interface {
	Users() []models.User
	SetPresence(userID string, presence models.Presence) error
}

// ViewerSource reports users that are actively using the app. Their presence is left alone.
type ViewerSource interface {
	ActiveViewers() []string
}

// PresenceSimulator flips random users online and offline on a fixed interval.
type PresenceSimulator struct {
	store   PresenceStore
	viewers ViewerSource
	sched   *Scheduler
	rng     Random
	cfg     Config
	log     *zap.Logger
}

// NewPresenceSimulator builds a presence simulator. viewers may be nil.
func NewPresenceSimulator(st PresenceStore, viewers ViewerSource, sched *Scheduler, rng Random, cfg Config, log *zap.Logger) *PresenceSimulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &PresenceSimulator{store: st, viewers: viewers, sched: sched, rng: rng, cfg: cfg, log: log}
}

// Start begins ticking.
func (p *PresenceSimulator) Start() {
	p.sched.Schedule(presenceKey, p.cfg.PresenceInterval, p.tick)
}

// Stop cancels the next tick.
func (p *PresenceSimulator) Stop() {
	p.sched.Cancel(presenceKey)
}

func (p *PresenceSimulator) tick() {
	p.Step()
	p.sched.Schedule(presenceKey, p.cfg.PresenceInterval, p.tick)
}

// Step runs one round and returns the users whose presence changed.
func (p *PresenceSimulator) Step() []string {
	var skip []string
	if p.viewers != nil {
		skip = p.viewers.ActiveViewers()
	}
	var flipped []string
	for _, u := range p.store.Users() {
		if u.ID == models.AssistantUserID || slices.Contains(skip, u.ID) {
			continue
		}
		if p.rng.Float64() >= p.cfg.PresenceToggleProbability {
			continue
		}
		next := models.PresenceOnline
		if u.Status == models.PresenceOnline {
			next = models.PresenceOffline
		}
		if err := p.store.SetPresence(u.ID, next); err != nil {
			p.log.Debug("presence flip failed", zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		observability.IncSimulationEvent("presence")
		flipped = append(flipped, u.ID)
	}
	return flipped
}
