package entities

import "time"

// Vote is one voter's immutable choice on one poll. At most one exists per
// (PollID, VoterID).
type Vote struct {
	ID             string    `json:"id"`
	PollID         string    `json:"poll_id"`
	VoterID        string    `json:"voter_id"`
	SelectedOption int       `json:"selected_option"`
	CreatedAt      time.Time `json:"created_at"`
}
