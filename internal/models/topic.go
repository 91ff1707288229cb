package models

// Topic is a practice prompt assigned to a session.
type Topic struct {
	ID         int    `json:"id"`
	Topic      string `json:"topic"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"` // easy|medium|hard
}
