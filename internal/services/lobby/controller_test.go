package lobby

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-go2/internal/dependencies/mocks"
	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/services/challenge"
	"github.com/mcoot/battleship-go2/internal/services/game"
	"github.com/mcoot/battleship-go2/internal/services/presence"
	"github.com/mcoot/battleship-go2/internal/storage/memory"
	"github.com/mcoot/battleship-go2/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	sender     *mocks.MockSender
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	presence   *presence.Directory
	broker     *challenge.Broker
	games      *game.Controller
	controller *Controller
	ctx        context.Context

	alice model.Player
	bob   model.Player
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.sender = mocks.NewMockSender()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.presence = presence.New(logger)
	s.broker = challenge.New(s.presence, s.sender, s.clock, challenge.DefaultTTL, logger)
	s.games = game.NewController(s.storage, s.sender, mocks.NewMockSettler(), s.clock, logger, game.DefaultOptions())
	s.controller = NewController(s.games, s.broker, s.sender, s.random, DefaultCodeLength, logger)
	s.ctx = context.Background()

	s.alice = testutil.Player("id-a", "alice")
	s.bob = testutil.Player("id-b", "bob")
}

// CreateLobby tests

func (s *ControllerSuite) TestCreateLobbySucceeds() {
	s.random.QueueString("x7y9a")

	session, err := s.controller.CreateLobby(s.ctx, s.alice)
	s.Require().NoError(err)

	s.Equal(model.RoomCode("x7y9a"), session.Code)
	s.Equal(model.SessionWaiting, session.Status)
	s.Equal(s.alice.ID, session.CurrentTurn)
	s.Equal([]model.Event{{
		Name:    model.EventLobbyCreated,
		Payload: model.LobbyCreatedPayload{RoomCode: "x7y9a"},
	}}, s.sender.To(s.alice.ID))
}

func (s *ControllerSuite) TestCreateLobbyRetriesOnCollision() {
	s.random.QueueString("aaaaa", "aaaaa", "bbbbb")

	first, err := s.controller.CreateLobby(s.ctx, s.alice)
	s.Require().NoError(err)
	second, err := s.controller.CreateLobby(s.ctx, s.bob)
	s.Require().NoError(err)

	s.Equal(model.RoomCode("aaaaa"), first.Code)
	s.Equal(model.RoomCode("bbbbb"), second.Code)

	hosted, _ := s.games.GetSession(s.ctx, "aaaaa")
	s.Equal(s.alice.ID, hosted.Player1.ID)
}

func (s *ControllerSuite) TestCreateLobbyGivesUpEventually() {
	codes := make([]string, maxCodeAttempts+1)
	for i := range codes {
		codes[i] = "aaaaa"
	}
	s.random.QueueString(codes...)
	_, _ = s.controller.CreateLobby(s.ctx, s.alice)

	_, err := s.controller.CreateLobby(s.ctx, s.bob)
	s.ErrorIs(err, model.ErrRoomCodeTaken)
}

func (s *ControllerSuite) TestCreateLobbyConsumesHostChallenge() {
	_, _ = s.presence.Register(s.alice.ID, "alice")
	_, _ = s.presence.Register(s.bob.ID, "bob")
	_ = s.broker.SendChallenge(s.alice.ID, "alice", "bob")
	s.broker.AcceptChallenge("alice", "bob")
	s.sender.Reset()
	s.random.QueueString("x7y9a")

	_, err := s.controller.CreateLobby(s.ctx, s.alice)
	s.Require().NoError(err)

	s.Equal([]model.Event{{
		Name:    model.EventChallengeRoomReady,
		Payload: model.ChallengeRoomReadyPayload{RoomCode: "x7y9a", Host: "alice"},
	}}, s.sender.To(s.bob.ID))
	_, ok := s.broker.Pending("alice")
	s.False(ok)
}

// JoinLobby tests

func (s *ControllerSuite) TestJoinLobbyStartsMatch() {
	s.random.QueueString("x7y9a")
	_, _ = s.controller.CreateLobby(s.ctx, s.alice)
	s.sender.Reset()

	session, err := s.controller.JoinLobby(s.ctx, s.bob, "x7y9a")
	s.Require().NoError(err)
	s.Equal(model.SessionActive, session.Status)

	s.Equal(model.MatchFoundPayload{OpponentName: "bob", YourTurn: true, RoomID: "x7y9a"}, s.sender.To(s.alice.ID)[0].Payload)
	s.Equal(model.MatchFoundPayload{OpponentName: "alice", YourTurn: false, RoomID: "x7y9a"}, s.sender.To(s.bob.ID)[0].Payload)
}

func (s *ControllerSuite) TestJoinLobbyNotFound() {
	_, err := s.controller.JoinLobby(s.ctx, s.bob, "nope1")
	s.ErrorIs(err, model.ErrRoomNotFound)

	s.Equal([]model.Event{{
		Name:    model.EventLobbyError,
		Payload: model.LobbyErrorPayload{Message: RoomNotFoundMessage},
	}}, s.sender.To(s.bob.ID))
}

func (s *ControllerSuite) TestJoinLobbyFull() {
	s.random.QueueString("x7y9a")
	_, _ = s.controller.CreateLobby(s.ctx, s.alice)
	_, _ = s.controller.JoinLobby(s.ctx, s.bob, "x7y9a")

	carol := testutil.Player("id-c", "carol")
	_, err := s.controller.JoinLobby(s.ctx, carol, "x7y9a")
	s.ErrorIs(err, model.ErrRoomFull)

	s.Equal([]model.Event{{
		Name:    model.EventLobbyError,
		Payload: model.LobbyErrorPayload{Message: RoomFullMessage},
	}}, s.sender.To(carol.ID))
}

// ValidateRoom tests

func (s *ControllerSuite) TestValidateRoom() {
	s.random.QueueString("x7y9a")
	_, _ = s.controller.CreateLobby(s.ctx, s.alice)

	cases := []struct {
		code   model.RoomCode
		exists bool
	}{
		{"x7y9a", true},
		{"zzzzz", false},
	}
	for _, tc := range cases {
		s.sender.Reset()
		exists, err := s.controller.ValidateRoom(s.ctx, s.bob.ID, tc.code)
		s.Require().NoError(err)
		s.Equal(tc.exists, exists)
		s.Equal([]model.Event{{
			Name:    model.EventRoomValidationResult,
			Payload: model.RoomValidationPayload{Exists: tc.exists},
		}}, s.sender.To(s.bob.ID))
	}

	open, _ := s.games.RoomOpen(s.ctx, "x7y9a")
	s.True(open, "validation reserves nothing")
}

func (s *ControllerSuite) TestValidateActiveRoomIsFalse() {
	s.random.QueueString("x7y9a")
	_, _ = s.controller.CreateLobby(s.ctx, s.alice)
	_, _ = s.controller.JoinLobby(s.ctx, s.bob, "x7y9a")

	exists, err := s.controller.ValidateRoom(s.ctx, "id-c", "x7y9a")
	s.Require().NoError(err)
	s.False(exists)
}
