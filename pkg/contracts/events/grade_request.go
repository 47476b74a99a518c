package events

import "time"

// Pedido de graduação publicado no tópico "grade_requests" por um operador
// ou por uma varredura automática. O core só governa o que acontece depois
// que o resultado chega; quem decide o resultado é o emissor.
type GradeRequest struct {
	WagerID string    `json:"wagerId"`
	Outcome string    `json:"outcome"` // "WON" | "LOST" | "PUSH" | "VOID"
	Source  string    `json:"source,omitempty"` // ex: "manual", "sweep"
	Ts      time.Time `json:"ts"`
}
