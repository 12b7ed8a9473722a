package entities

import "time"

type RelationshipKind string

const (
	RelationshipRelated      RelationshipKind = "related"
	RelationshipFollowUp     RelationshipKind = "follow-up"
	RelationshipOpposing     RelationshipKind = "opposing"
	RelationshipPrerequisite RelationshipKind = "prerequisite"
	RelationshipCustom       RelationshipKind = "custom"
)

var relationshipKinds = map[RelationshipKind]struct{}{
	RelationshipRelated:      {},
	RelationshipFollowUp:     {},
	RelationshipOpposing:     {},
	RelationshipPrerequisite: {},
	RelationshipCustom:       {},
}

func (k RelationshipKind) Valid() bool {
	_, ok := relationshipKinds[k]
	return ok
}

// Edge is a directed, typed link from one poll to another.
// A -> B "follow-up" says nothing about B -> A.
type Edge struct {
	ID           int64            `json:"id"`
	SourcePollID string           `json:"source_poll_id"`
	TargetPollID string           `json:"target_poll_id"`
	Kind         RelationshipKind `json:"kind"`
	CreatedAt    time.Time        `json:"created_at"`
}
