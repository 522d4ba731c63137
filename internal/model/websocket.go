package model

// WebSocket message types
const (
	WSMessageTypeComplete = "complete"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSAudioReadyMessage is pushed when a song's audio resolves
type WSAudioReadyMessage struct {
	Type     string `json:"type"`
	SongID   string `json:"songId"`
	AudioURL string `json:"audioUrl"`
}
