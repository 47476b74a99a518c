package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// EventID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type    string `json:"type"`    // subscribe | unsubscribe | ping
	EventID string `json:"eventId"` // requerido em subscribe/unsubscribe
}

// LineUpdate representa uma cotação nova enviada para clientes WebSocket
type LineUpdate struct {
	EventID string      `json:"eventId"`
	Payload interface{} `json:"payload"`
}
