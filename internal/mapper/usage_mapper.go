package mapper

import (
	"encoding/json"

	"regassist-be/internal/entity"
	"regassist-be/internal/model"

	"gorm.io/datatypes"
)

type UsageMapper struct{}

func NewUsageMapper() *UsageMapper {
	return &UsageMapper{}
}

func (m *UsageMapper) ToEntity(u *model.UsageRecord) *entity.UsageRecord {
	if u == nil {
		return nil
	}

	var decisions, metrics map[string]any
	var history []string
	if len(u.Decisions) > 0 {
		_ = json.Unmarshal(u.Decisions, &decisions)
	}
	if len(u.Metrics) > 0 {
		_ = json.Unmarshal(u.Metrics, &metrics)
	}
	if len(u.NodeHistory) > 0 {
		_ = json.Unmarshal(u.NodeHistory, &history)
	}

	return &entity.UsageRecord{
		Id:               u.Id,
		RequestId:        u.RequestId,
		QASessionId:      u.QASessionId,
		Stage:            u.Stage,
		GoldenServed:     u.GoldenServed,
		CacheHit:         u.CacheHit,
		Streamed:         u.Streamed,
		Provider:         u.Provider,
		Model:            u.Model,
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		ToolRounds:       u.ToolRounds,
		DurationMs:       u.DurationMs,
		Decisions:        decisions,
		Metrics:          metrics,
		NodeHistory:      history,
		CreatedAt:        u.CreatedAt,
	}
}

func (m *UsageMapper) ToModel(u *entity.UsageRecord) *model.UsageRecord {
	if u == nil {
		return nil
	}

	return &model.UsageRecord{
		Id:               u.Id,
		RequestId:        u.RequestId,
		QASessionId:      u.QASessionId,
		Stage:            u.Stage,
		GoldenServed:     u.GoldenServed,
		CacheHit:         u.CacheHit,
		Streamed:         u.Streamed,
		Provider:         u.Provider,
		Model:            u.Model,
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		ToolRounds:       u.ToolRounds,
		DurationMs:       u.DurationMs,
		Decisions:        toJSON(u.Decisions),
		Metrics:          toJSON(u.Metrics),
		NodeHistory:      toJSON(u.NodeHistory),
		CreatedAt:        u.CreatedAt,
	}
}

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
