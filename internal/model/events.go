package model

// EventName identifies a named message on the wire
type EventName string

// Inbound events sent by clients
const (
	EventRegisterUser    EventName = "register_user"
	EventFindMatch       EventName = "find_match"
	EventCreateLobby     EventName = "create_lobby"
	EventJoinLobby       EventName = "join_lobby"
	EventValidateRoom    EventName = "validate_room"
	EventSendChallenge   EventName = "send_challenge"
	EventAcceptChallenge EventName = "accept_challenge"
	EventFireMissile     EventName = "fire_missile"
)

// Outbound events sent by the server
const (
	EventLobbyStateUpdate     EventName = "lobby_state_update"
	EventLobbyCreated         EventName = "lobby_created"
	EventLobbyError           EventName = "lobby_error"
	EventMatchFound           EventName = "match_found"
	EventRoomValidationResult EventName = "room_validation_result"
	EventReceiveChallenge     EventName = "receive_challenge"
	EventChallengeAccepted    EventName = "challenge_accepted_by_guest"
	EventChallengeRoomReady   EventName = "challenge_room_ready"
	EventChallengeExpired     EventName = "challenge_expired"
	EventChallengeWithdrawn   EventName = "challenge_withdrawn"
	EventMissileResult        EventName = "missile_result"
	EventTurnUpdate           EventName = "turn_update"
	EventGameOver             EventName = "game_over"
)

// Event is an outbound message addressed by the services to one or more identities
type Event struct {
	Name    EventName
	Payload any
}

// Inbound payloads

type RegisterUserPayload struct {
	Username string `json:"username"`
}

type FindMatchPayload struct {
	Username string `json:"username"`
	Board    Board  `json:"board"`
}

type CreateLobbyPayload struct {
	Username string `json:"username"`
	Board    Board  `json:"board"`
}

type JoinLobbyPayload struct {
	Username string   `json:"username"`
	Board    Board    `json:"board"`
	RoomCode RoomCode `json:"roomCode"`
}

type ValidateRoomPayload struct {
	RoomCode RoomCode `json:"roomCode"`
}

type SendChallengePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type AcceptChallengePayload struct {
	Host  string `json:"host"`
	Guest string `json:"guest"`
}

type FireMissilePayload struct {
	RoomID      RoomCode `json:"roomId"`
	TargetIndex int      `json:"targetIndex"`
}

// Outbound payloads

type LobbyCreatedPayload struct {
	RoomCode RoomCode `json:"roomCode"`
}

type LobbyErrorPayload struct {
	Message string `json:"message"`
}

type MatchFoundPayload struct {
	OpponentName string   `json:"opponentName"`
	YourTurn     bool     `json:"yourTurn"`
	RoomID       RoomCode `json:"roomId"`
}

type RoomValidationPayload struct {
	Exists bool `json:"exists"`
}

type ReceiveChallengePayload struct {
	From string `json:"from"`
}

type ChallengeAcceptedPayload struct {
	Guest string `json:"guest"`
}

type ChallengeRoomReadyPayload struct {
	RoomCode RoomCode `json:"roomCode"`
	Host     string   `json:"host"`
}

type ChallengeExpiredPayload struct {
	To string `json:"to"`
}

type ChallengeWithdrawnPayload struct {
	From string `json:"from"`
}

type MissileResultPayload struct {
	TargetIndex int      `json:"targetIndex"`
	IsHit       bool     `json:"isHit"`
	AttackerID  Identity `json:"attackerId"`
}

type TurnUpdatePayload struct {
	CurrentTurnID Identity `json:"currentTurnId"`
}

type GameOverPayload struct {
	WinnerID   Identity `json:"winnerId"`
	WinnerName string   `json:"winnerName"`
	LoserName  string   `json:"loserName"`
}
