package model

import "time"

// Article is a company news item.
type Article struct {
	ID        int64     `json:"id"`
	Headline  string    `json:"headline"`
	Summary   string    `json:"summary"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	Published time.Time `json:"published"`
	Sentiment string    `json:"sentiment,omitempty"`
}
