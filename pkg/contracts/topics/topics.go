package topics

const (
	// Linhas (cotações do provedor)
	LineUpdates = "line_updates"

	// Apostas
	WagerPlaced  = "wager_placed"
	WagerSettled = "wager_settled"

	// Graduação (resultado decidido externamente)
	GradeRequests = "grade_requests"

	// DLQs
	GradeRequestsDLQ = "grade_requests_dlq"
)
