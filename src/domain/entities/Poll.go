package entities

import "time"

const (
	MinPollOptions = 2
	MaxPollOptions = 10
)

type Option struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// Poll is a question with an ordered, immutable option set. Tally is a
// materialized view over the poll's votes and is only written by the vote ledger.
type Poll struct {
	ID          string    `json:"id"`
	Question    string    `json:"question"`
	Description string    `json:"description,omitempty"`
	Options     []Option  `json:"options"`
	CreatorID   string    `json:"creator_id"`
	IsPublic    bool      `json:"is_public"`
	Tally       Tally     `json:"tally"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Poll) HasOption(index int) bool {
	return index >= 0 && index < len(p.Options)
}

// OptionsFromLabels assigns indices by position.
func OptionsFromLabels(labels []string) []Option {
	options := make([]Option, len(labels))
	for i, label := range labels {
		options[i] = Option{Index: i, Label: label}
	}
	return options
}

func (p Poll) Labels() []string {
	labels := make([]string, len(p.Options))
	for i, option := range p.Options {
		labels[i] = option.Label
	}
	return labels
}
