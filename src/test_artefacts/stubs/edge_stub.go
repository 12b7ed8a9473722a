package stubs

import (
	"time"

	"everypoll/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type EdgeStub struct {
	edge entities.Edge
}

func NewEdgeStub() EdgeStub {
	kinds := []entities.RelationshipKind{
		entities.RelationshipRelated,
		entities.RelationshipFollowUp,
		entities.RelationshipOpposing,
		entities.RelationshipPrerequisite,
		entities.RelationshipCustom,
	}

	edge := entities.Edge{
		ID:           gofakeit.Int64(),
		SourcePollID: gofakeit.UUID(),
		TargetPollID: gofakeit.UUID(),
		Kind:         kinds[gofakeit.Number(0, len(kinds)-1)],
		CreatedAt:    time.Now().UTC(),
	}

	return EdgeStub{edge: edge}
}

func (es EdgeStub) WithSourcePollID(sourcePollID string) EdgeStub {
	es.edge.SourcePollID = sourcePollID
	return es
}

func (es EdgeStub) WithTargetPollID(targetPollID string) EdgeStub {
	es.edge.TargetPollID = targetPollID
	return es
}

func (es EdgeStub) WithKind(kind entities.RelationshipKind) EdgeStub {
	es.edge.Kind = kind
	return es
}

func (es EdgeStub) Get() entities.Edge {
	return es.edge
}
