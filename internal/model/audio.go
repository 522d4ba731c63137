package model

// AudioStatus is the poll response for a song's audio
type AudioStatus struct {
	Status   string `json:"status"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// CallbackAck is returned to the music provider for every webhook delivery
type CallbackAck struct {
	Received bool   `json:"received"`
	Found    bool   `json:"found"`
	Updated  bool   `json:"updated"`
	SongID   string `json:"songId,omitempty"`
}
