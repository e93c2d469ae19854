package bot

import (
	"github.com/mcoot/battleship-go2/internal/model"
)

// Pilot plays one match on behalf of a connection. It learns its own identity
// from the first turn_update or missile_result it can attribute, and reports a
// target whenever the turn is its own.
type Pilot struct {
	strategy Strategy
	self     model.Identity
	room     model.RoomCode
	tried    []bool
	fired    bool
	myTurn   bool
	over     bool
	won      bool
	hits     int
}

// NewPilot creates a Pilot using the given strategy
func NewPilot(strategy Strategy) *Pilot {
	return &Pilot{
		strategy: strategy,
		tried:    make([]bool, model.BoardCells),
	}
}

// Room returns the room the pilot is playing in
func (p *Pilot) Room() model.RoomCode {
	return p.room
}

// Over reports whether the match has ended
func (p *Pilot) Over() bool {
	return p.over
}

// Won reports whether the pilot won the finished match
func (p *Pilot) Won() bool {
	return p.won
}

// Hits returns how many of the pilot's shots struck a ship
func (p *Pilot) Hits() int {
	return p.hits
}

// MatchFound starts the match. It returns a target when the pilot moves first.
func (p *Pilot) MatchFound(payload model.MatchFoundPayload) (int, bool) {
	p.room = payload.RoomID
	p.myTurn = payload.YourTurn
	return p.next()
}

// MissileResult records the outcome of a shot by either side
func (p *Pilot) MissileResult(payload model.MissileResultPayload) {
	if p.fired && p.self == "" {
		p.self = payload.AttackerID
	}
	if payload.AttackerID == p.self {
		p.fired = false
		if payload.IsHit {
			p.hits++
		}
	}
}

// TurnUpdate hands over the turn. It returns a target when the turn is the pilot's.
func (p *Pilot) TurnUpdate(payload model.TurnUpdatePayload) (int, bool) {
	if p.self == "" && !p.fired {
		// The opponent just fired, so the turn passes to us
		p.self = payload.CurrentTurnID
	}
	p.myTurn = payload.CurrentTurnID == p.self
	return p.next()
}

// GameOver ends the match
func (p *Pilot) GameOver(payload model.GameOverPayload) {
	p.over = true
	p.myTurn = false
	p.won = p.self != "" && payload.WinnerID == p.self
}

func (p *Pilot) next() (int, bool) {
	if !p.myTurn || p.over || p.fired {
		return 0, false
	}
	target := p.strategy.ChooseTarget(p.tried)
	if target < 0 {
		return 0, false
	}
	p.tried[target] = true
	p.fired = true
	return target, true
}
