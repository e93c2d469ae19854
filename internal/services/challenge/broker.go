package challenge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/battleship-go2/internal/dependencies/clock"
	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/realtime"
	"github.com/mcoot/battleship-go2/internal/services/presence"
)

// DefaultTTL is how long a challenge stays open
const DefaultTTL = 30 * time.Second

// OfflineMessage is sent to a challenger whose target is not connected
const OfflineMessage = "Player is offline!"

// ExpiryHandler is invoked when a pairing's timer fires.
// The generation identifies which pairing the timer was armed for.
type ExpiryHandler func(from string, generation uint64)

type pending struct {
	pairing model.Pairing
	timer   clock.Timer
}

// Broker tracks named challenges, at most one outgoing per challenger name.
// Parties are resolved to live connections through presence at delivery time.
type Broker struct {
	mu         sync.Mutex
	pairings   map[string]*pending
	generation uint64
	onExpire   ExpiryHandler

	presence *presence.Directory
	sender   realtime.Sender
	clock    clock.Clock
	ttl      time.Duration
	logger   *slog.Logger
}

// New creates a Broker whose timers expire pairings directly
func New(presence *presence.Directory, sender realtime.Sender, clock clock.Clock, ttl time.Duration, logger *slog.Logger) *Broker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	b := &Broker{
		pairings: make(map[string]*pending),
		presence: presence,
		sender:   sender,
		clock:    clock,
		ttl:      ttl,
		logger:   logger.With(slog.String("component", "challenge")),
	}
	b.onExpire = func(from string, generation uint64) { b.Expire(from, generation) }
	return b
}

// SetExpiryHandler routes timer fires elsewhere, e.g. onto an event loop
// that then calls Expire itself.
func (b *Broker) SetExpiryHandler(handler ExpiryHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onExpire = handler
}

// SendChallenge records a challenge from one name to another, replacing any
// earlier challenge by the same name. The target is told immediately.
func (b *Broker) SendChallenge(requester model.Identity, rawFrom, rawTo string) error {
	from := model.NormalizeName(rawFrom)
	to := model.NormalizeName(rawTo)
	if from == "" || to == "" {
		return model.ErrInvalidName
	}

	target, ok := b.presence.FindByName(to)
	if !ok {
		b.sender.Send(requester, model.Event{
			Name:    model.EventLobbyError,
			Payload: model.LobbyErrorPayload{Message: OfflineMessage},
		})
		return model.ErrPlayerOffline
	}

	b.mu.Lock()
	if prior, ok := b.pairings[from]; ok {
		prior.timer.Stop()
	}
	b.generation++
	generation := b.generation
	b.pairings[from] = &pending{
		pairing: model.Pairing{
			FromName:   from,
			ToName:     to,
			Deadline:   b.clock.Now().Add(b.ttl),
			Generation: generation,
		},
		timer: b.clock.AfterFunc(b.ttl, func() { b.fire(from, generation) }),
	}
	b.mu.Unlock()

	b.logger.Info("challenge sent",
		slog.String("from", from),
		slog.String("to", to))
	b.sender.Send(target, model.Event{
		Name:    model.EventReceiveChallenge,
		Payload: model.ReceiveChallengePayload{From: from},
	})
	return nil
}

func (b *Broker) fire(from string, generation uint64) {
	b.mu.Lock()
	handler := b.onExpire
	b.mu.Unlock()
	handler(from, generation)
}

// Expire withdraws the pairing if it is still the one the timer was armed for.
// Both parties are told, unless the challenge was accepted: an accepted pairing
// that was never turned into a room is retired silently.
func (b *Broker) Expire(from string, generation uint64) bool {
	b.mu.Lock()
	p, ok := b.pairings[from]
	if !ok || p.pairing.Generation != generation {
		b.mu.Unlock()
		b.logger.Debug("stale challenge expiry ignored",
			slog.String("from", from),
			slog.Uint64("generation", generation))
		return false
	}
	delete(b.pairings, from)
	b.mu.Unlock()

	if p.pairing.Accepted {
		b.logger.Info("accepted challenge lapsed without a room",
			slog.String("from", p.pairing.FromName),
			slog.String("to", p.pairing.ToName))
		return true
	}

	b.logger.Info("challenge expired",
		slog.String("from", p.pairing.FromName),
		slog.String("to", p.pairing.ToName))
	b.notifyName(p.pairing.FromName, model.Event{
		Name:    model.EventChallengeExpired,
		Payload: model.ChallengeExpiredPayload{To: p.pairing.ToName},
	})
	b.notifyName(p.pairing.ToName, model.Event{
		Name:    model.EventChallengeWithdrawn,
		Payload: model.ChallengeWithdrawnPayload{From: p.pairing.FromName},
	})
	return true
}

// AcceptChallenge tells the host their challenge was accepted, provided the
// host's pairing targets this guest. The pairing keeps its deadline; a lobby
// the host opens before then is handed to the guest.
func (b *Broker) AcceptChallenge(rawHost, rawGuest string) bool {
	host := model.NormalizeName(rawHost)
	guest := model.NormalizeName(rawGuest)

	b.mu.Lock()
	p, ok := b.pairings[host]
	if !ok || p.pairing.ToName != guest {
		b.mu.Unlock()
		b.logger.Debug("accept without matching challenge ignored",
			slog.String("host", host),
			slog.String("guest", guest))
		return false
	}
	p.pairing.Accepted = true
	b.mu.Unlock()

	b.notifyName(host, model.Event{
		Name:    model.EventChallengeAccepted,
		Payload: model.ChallengeAcceptedPayload{Guest: guest},
	})
	return true
}

// ConsumeForHost hands a freshly created room to the host's challenge target
// and retires the pairing.
func (b *Broker) ConsumeForHost(rawHost string, code model.RoomCode) bool {
	host := model.NormalizeName(rawHost)

	b.mu.Lock()
	p, ok := b.pairings[host]
	if ok {
		p.timer.Stop()
		delete(b.pairings, host)
	}
	b.mu.Unlock()
	if !ok {
		return false
	}

	b.logger.Info("challenge room ready",
		slog.String("host", host),
		slog.String("guest", p.pairing.ToName),
		slog.String("room", string(code)))
	b.notifyName(p.pairing.ToName, model.Event{
		Name:    model.EventChallengeRoomReady,
		Payload: model.ChallengeRoomReadyPayload{RoomCode: code, Host: host},
	})
	return true
}

// DropFrom silently cancels the pairing keyed by name
func (b *Broker) DropFrom(rawName string) bool {
	name := model.NormalizeName(rawName)

	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pairings[name]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(b.pairings, name)
	return true
}

// Pending returns the pairing keyed by the challenger's name
func (b *Broker) Pending(rawFrom string) (model.Pairing, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pairings[model.NormalizeName(rawFrom)]
	if !ok {
		return model.Pairing{}, false
	}
	return p.pairing, true
}

func (b *Broker) notifyName(name string, event model.Event) {
	id, ok := b.presence.FindByName(name)
	if !ok {
		b.logger.Debug("challenge party offline",
			slog.String("name", name),
			slog.String("event", string(event.Name)))
		return
	}
	b.sender.Send(id, event)
}
