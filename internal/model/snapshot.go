package model

// OpenRoom is a waiting session shown in the lobby
type OpenRoom struct {
	Code RoomCode `json:"code"`
	Host string   `json:"hostName"`
}

// ActiveBattle is an in-progress session shown in the lobby
type ActiveBattle struct {
	Player1 string `json:"player1Name"`
	Player2 string `json:"player2Name"`
}

// LobbySnapshot is derived from presence and sessions on demand, never stored
type LobbySnapshot struct {
	Users         []string       `json:"users"`
	OpenRooms     []OpenRoom     `json:"openRooms"`
	ActiveBattles []ActiveBattle `json:"activeBattles"`
}
