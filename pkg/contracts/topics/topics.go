package topics

const (
	// Placares
	ScoreUpdates = "score_updates"

	// DLQ
	ScoreUpdatesDLQ = "score_updates_dlq"
)
