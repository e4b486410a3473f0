package mapper

import (
	"encoding/json"

	"regassist-be/internal/entity"
	"regassist-be/internal/model"

	"gorm.io/datatypes"
)

type FeedbackMapper struct{}

func NewFeedbackMapper() *FeedbackMapper {
	return &FeedbackMapper{}
}

func (m *FeedbackMapper) ToEntity(r *model.FeedbackRecord) *entity.FeedbackRecord {
	if r == nil {
		return nil
	}

	var payload map[string]any
	if len(r.Payload) > 0 {
		_ = json.Unmarshal(r.Payload, &payload)
	}

	return &entity.FeedbackRecord{
		Id:          r.Id,
		ResponseId:  r.ResponseId,
		QASessionId: r.QASessionId,
		Route:       r.Route,
		Status:      r.Status,
		Rating:      r.Rating,
		Comment:     r.Comment,
		Payload:     payload,
		ExpertId:    r.ExpertId,
		TrustScore:  r.TrustScore,
		Anonymous:   r.Anonymous,
		CreatedAt:   r.CreatedAt,
	}
}

func (m *FeedbackMapper) ToModel(r *entity.FeedbackRecord) *model.FeedbackRecord {
	if r == nil {
		return nil
	}

	var payload datatypes.JSON
	if r.Payload != nil {
		if b, err := json.Marshal(r.Payload); err == nil {
			payload = datatypes.JSON(b)
		}
	}

	return &model.FeedbackRecord{
		Id:          r.Id,
		ResponseId:  r.ResponseId,
		QASessionId: r.QASessionId,
		Route:       r.Route,
		Status:      r.Status,
		Rating:      r.Rating,
		Comment:     r.Comment,
		Payload:     payload,
		ExpertId:    r.ExpertId,
		TrustScore:  r.TrustScore,
		Anonymous:   r.Anonymous,
		CreatedAt:   r.CreatedAt,
	}
}

func (m *FeedbackMapper) ToEntities(records []*model.FeedbackRecord) []*entity.FeedbackRecord {
	entities := make([]*entity.FeedbackRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
