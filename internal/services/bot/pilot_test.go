package bot_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-go2/internal/dependencies/mocks"
	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/services/bot"
)

type PilotSuite struct {
	suite.Suite
	mockRandom *mocks.MockRandom
	pilot      *bot.Pilot
}

func TestPilotSuite(t *testing.T) {
	suite.Run(t, new(PilotSuite))
}

func (s *PilotSuite) SetupTest() {
	// The mock returns 0 forever, so targets run 0, 1, 2...
	s.mockRandom = mocks.NewMockRandom()
	s.pilot = bot.NewPilot(bot.NewRandomStrategy(s.mockRandom))
}

func (s *PilotSuite) TestMovesFirst() {
	target, fire := s.pilot.MatchFound(model.MatchFoundPayload{OpponentName: "bob", YourTurn: true, RoomID: "room1"})
	s.True(fire)
	s.Equal(0, target)
	s.Equal(model.RoomCode("room1"), s.pilot.Room())

	s.pilot.MissileResult(model.MissileResultPayload{TargetIndex: 0, IsHit: true, AttackerID: "me"})
	s.Equal(1, s.pilot.Hits())

	_, fire = s.pilot.TurnUpdate(model.TurnUpdatePayload{CurrentTurnID: "them"})
	s.False(fire)

	s.pilot.MissileResult(model.MissileResultPayload{TargetIndex: 50, IsHit: false, AttackerID: "them"})
	target, fire = s.pilot.TurnUpdate(model.TurnUpdatePayload{CurrentTurnID: "me"})
	s.True(fire)
	s.Equal(1, target)
}

func (s *PilotSuite) TestMovesSecond() {
	_, fire := s.pilot.MatchFound(model.MatchFoundPayload{OpponentName: "bob", YourTurn: false, RoomID: "room1"})
	s.False(fire)

	s.pilot.MissileResult(model.MissileResultPayload{TargetIndex: 7, IsHit: true, AttackerID: "them"})
	s.Zero(s.pilot.Hits())

	target, fire := s.pilot.TurnUpdate(model.TurnUpdatePayload{CurrentTurnID: "me"})
	s.True(fire)
	s.Equal(0, target)

	s.pilot.MissileResult(model.MissileResultPayload{TargetIndex: 0, IsHit: false, AttackerID: "me"})
	_, fire = s.pilot.TurnUpdate(model.TurnUpdatePayload{CurrentTurnID: "them"})
	s.False(fire)
	s.Zero(s.pilot.Hits())
}

func (s *PilotSuite) TestDoesNotFireTwiceBeforeResult() {
	_, fire := s.pilot.MatchFound(model.MatchFoundPayload{YourTurn: true, RoomID: "room1"})
	s.True(fire)

	_, fire = s.pilot.TurnUpdate(model.TurnUpdatePayload{CurrentTurnID: "me"})
	s.False(fire)
}

func (s *PilotSuite) TestGameOver() {
	s.pilot.MatchFound(model.MatchFoundPayload{YourTurn: true, RoomID: "room1"})
	s.pilot.MissileResult(model.MissileResultPayload{TargetIndex: 0, IsHit: true, AttackerID: "me"})

	s.pilot.GameOver(model.GameOverPayload{WinnerID: "me", WinnerName: "alice", LoserName: "bob"})
	s.True(s.pilot.Over())
	s.True(s.pilot.Won())

	_, fire := s.pilot.TurnUpdate(model.TurnUpdatePayload{CurrentTurnID: "me"})
	s.False(fire)
}

func (s *PilotSuite) TestGameOverLost() {
	s.pilot.MatchFound(model.MatchFoundPayload{YourTurn: false, RoomID: "room1"})
	s.pilot.TurnUpdate(model.TurnUpdatePayload{CurrentTurnID: "me"})

	s.pilot.GameOver(model.GameOverPayload{WinnerID: "them"})
	s.True(s.pilot.Over())
	s.False(s.pilot.Won())
}
