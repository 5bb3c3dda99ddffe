package domain

import "time"

// Pack is a curated set of prompts users can fan out against a trained model.
type Pack struct {
	ID          string
	Name        string
	Description string
	CoverURL    string
	CreatedAt   time.Time
}

// PackPrompt is a single prompt belonging to a pack.
type PackPrompt struct {
	ID     string
	PackID string
	Prompt string
}
