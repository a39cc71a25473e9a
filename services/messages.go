package services

const (
	MessageSuccess = "success"
	MessageError   = "error"
	MessageWarning = "warning"
)

// Message is a flash-style notification rendered by the client.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}
