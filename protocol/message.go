package protocol

// ReadingMessage is the JSON object delivered to subscribers for each
// Reading that makes it through the relay.
type ReadingMessage struct {
	Mac    string `json:"mac"`
	N      int    `json:"n"`
	Values []int  `json:"values"`
}

// ErrorMessage reports a terminal ingest failure. It is sent at most once
// per ingest worker lifetime, only to subscribers connected at that moment.
type ErrorMessage struct {
	Error string `json:"error"`
}

// Message converts a Reading into its outbound wire shape.
func (r *Reading) Message() ReadingMessage {
	return ReadingMessage{Mac: r.DeviceID, N: r.N, Values: r.Values}
}
