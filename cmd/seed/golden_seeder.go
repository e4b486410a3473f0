package main

import (
	"log"
	"time"

	"regassist-be/internal/model"
	"regassist-be/pkg/embedding"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type goldenSeed struct {
	Question string
	Answer   string
	Topic    string
	Sources  []string
}

// SeedGoldenAnswers inserts the curated starter set with citations into the
// seeded KB documents and a question embedding per answer. An answer without
// its embedding stays invisible to the gate, so an embedding failure here is
// logged loudly.
func SeedGoldenAnswers(db *gorm.DB, provider embedding.EmbeddingProvider, docsBySource map[string]model.KBDocument) {
	seeds := []goldenSeed{
		{
			Question: "How many hours can I legally work per week?",
			Answer: "Regular working time is capped at 8 hours per day and 40 hours per week, averaged " +
				"over a four-month reference period. A collective agreement can stretch the averaging " +
				"window to six months for seasonal work, but the 40-hour weekly average still holds.",
			Topic:   "working_time",
			Sources: []string{"Labor Code §58"},
		},
		{
			Question: "What is the overtime pay rate?",
			Answer: "Overtime earns a premium on top of your regular wage: at least 25% for the first two " +
				"extra hours in a day and 50% beyond that. Overtime on rest days or public holidays pays " +
				"a 100% premium. You and your employer can agree on compensatory time off instead, and " +
				"annual overtime is capped at 250 hours (300 under a collective agreement).",
			Topic:   "working_time",
			Sources: []string{"Labor Code §64"},
		},
		{
			Question: "How many vacation days am I entitled to per year?",
			Answer: "The base entitlement is 20 working days of paid annual leave. It grows with age up to " +
				"30 days from the year you turn 45, and parents get extra days (2 for one child, 4 for " +
				"two, 7 for three or more). Seven days per year must be scheduled when you ask for them.",
			Topic:   "leave",
			Sources: []string{"Labor Code §112"},
		},
		{
			Question: "What notice period applies if my employer terminates me?",
			Answer: "The baseline notice period is 30 days and it grows with your service: +5 days after 3 " +
				"years, +15 after 5, +20 after 8, +25 after 10, up to +60 after 20 years. If the employer " +
				"terminates, you are released from work for at least half the notice period with absence pay.",
			Topic:   "termination",
			Sources: []string{"Labor Code §69", "Labor Code §77"},
		},
		{
			Question: "How long can a probation period last?",
			Answer: "Probation can be stipulated for up to 3 months, extendable once only within the same " +
				"3-month ceiling (6 months when a collective agreement allows it). During probation either " +
				"side may end the employment immediately, without giving reasons.",
			Topic:   "probation",
			Sources: []string{"Labor Code §45(5)"},
		},
	}

	for _, s := range seeds {
		var existing model.GoldenAnswer
		if err := db.Where("question = ?", s.Question).First(&existing).Error; err == nil {
			continue
		}

		answer := model.GoldenAnswer{
			Question:    s.Question,
			Answer:      s.Answer,
			Topic:       s.Topic,
			EffectiveAt: time.Now(),
			Active:      true,
		}
		if err := db.Create(&answer).Error; err != nil {
			log.Printf("Error seeding golden answer %q: %v", s.Question, err)
			continue
		}

		for _, source := range s.Sources {
			doc, ok := docsBySource[source]
			if !ok {
				log.Printf("Warn: golden citation source %q has no seeded document", source)
				continue
			}
			citation := model.GoldenCitation{
				GoldenAnswerId: answer.Id,
				KBDocumentId:   doc.Id,
				Label:          source,
			}
			if err := db.Create(&citation).Error; err != nil {
				log.Printf("Error seeding golden citation %q: %v", source, err)
			}
		}

		res, err := provider.Generate(s.Question, embedding.TaskDocument)
		if err != nil {
			log.Printf("Error: no embedding for golden answer %q, the gate cannot match it: %v", s.Question, err)
			continue
		}
		emb := model.GoldenEmbedding{
			GoldenAnswerId: answer.Id,
			EmbeddingValue: pgvector.NewVector(res.Embedding.Values),
		}
		if err := db.Create(&emb).Error; err != nil {
			log.Printf("Error seeding golden embedding for %q: %v", s.Question, err)
		}
	}

	log.Println("✅ Golden answers seeded successfully.")
}
