package main

import (
	"log"
	"time"

	"regassist-be/internal/model"
	"regassist-be/pkg/embedding"
	"regassist-be/pkg/utils"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

type kbSeed struct {
	Title       string
	Source      string
	Category    string
	EffectiveAt time.Time
	Content     string
}

// SeedKnowledgeBase inserts the regulation articles and their chunk
// embeddings. Returns documents keyed by source label so the golden seeder
// can attach citations. Embedding failures degrade to a warning; the
// documents still land and a reindex can backfill vectors later.
func SeedKnowledgeBase(db *gorm.DB, provider embedding.EmbeddingProvider) map[string]model.KBDocument {
	docs := []kbSeed{
		{
			Title:       "Standard Working Hours",
			Source:      "Labor Code §58",
			Category:    "working_time",
			EffectiveAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Content: "Regular working time may not exceed eight hours per day and forty hours per week, " +
				"averaged over a reference period of four months. Collective agreements may extend the " +
				"reference period to six months for seasonal work. Time spent on mandatory training ordered " +
				"by the employer counts as working time. Rest breaks of at least thirty minutes are required " +
				"after six consecutive hours of work and are unpaid unless agreed otherwise.",
		},
		{
			Title:       "Overtime Compensation",
			Source:      "Labor Code §64",
			Category:    "working_time",
			EffectiveAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Content: "Work performed beyond regular working time is overtime and requires the employee's " +
				"consent except in emergencies. Overtime is compensated at a premium of at least 25 percent " +
				"of the regular wage for the first two hours per day and 50 percent thereafter. Overtime on " +
				"weekly rest days or public holidays carries a premium of 100 percent. Instead of the premium " +
				"the parties may agree on compensatory time off equal to the overtime worked plus the premium " +
				"percentage. Annual overtime may not exceed 250 hours unless a collective agreement raises " +
				"the cap to 300 hours.",
		},
		{
			Title:       "Annual Paid Leave",
			Source:      "Labor Code §112",
			Category:    "leave",
			EffectiveAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Content: "Employees are entitled to a base annual leave of twenty working days. The entitlement " +
				"increases with age, reaching thirty working days from the year the employee turns 45. " +
				"Employees raising children receive additional days: two for one child, four for two children " +
				"and seven for three or more. Leave is scheduled by the employer after consulting the employee, " +
				"but seven working days per year must be scheduled at the employee's request. Unused leave " +
				"must be granted by the end of March of the following year.",
		},
		{
			Title:       "Sick Leave and Sick Pay",
			Source:      "Labor Code §126",
			Category:    "leave",
			EffectiveAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Content: "Employees unable to work due to illness receive fifteen days of sick leave per calendar " +
				"year paid by the employer at 70 percent of the absence pay. From the sixteenth day social " +
				"insurance pays a sickness benefit, provided the employee holds the required insurance period. " +
				"A medical certificate is required from the first day of absence. Sick leave days not used in " +
				"a calendar year lapse and cannot be carried over or paid out.",
		},
		{
			Title:       "Termination Notice Periods",
			Source:      "Labor Code §69",
			Category:    "termination",
			EffectiveAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Content: "The notice period is thirty days and extends with service at the same employer: by five " +
				"days after three years, fifteen days after five years, twenty days after eight years, " +
				"twenty-five days after ten years and up to sixty additional days after twenty years. When the " +
				"employer terminates, the employee is exempt from work duty for at least half of the notice " +
				"period and receives absence pay for that time. The parties may agree on a longer notice " +
				"period of up to six months.",
		},
		{
			Title:       "Severance Pay",
			Source:      "Labor Code §77",
			Category:    "termination",
			EffectiveAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Content: "Severance is due when employment ends by employer termination without cause attributable " +
				"to the employee's conduct, or when the employer ceases without legal successor. The amount is " +
				"one month's absence pay after three years of service, rising stepwise to six months after " +
				"twenty-five years. Employees within five years of retirement age receive one to three " +
				"additional months depending on service length. No severance is due when the employee " +
				"qualifies as a pensioner at the time of termination.",
		},
		{
			Title:       "Minimum Wage Order",
			Source:      "Wage Decree 2024/II",
			Category:    "wages",
			EffectiveAt: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			Content: "The monthly gross minimum wage for full-time employment is set by annual decree; the " +
				"current order raises it by 9 percent over the previous year. Jobs requiring at least secondary " +
				"vocational qualification carry a guaranteed wage minimum 10 percent above the base minimum " +
				"wage. Part-time employees receive the minimum proportionally. Wage supplements for night work " +
				"(15 percent) and shift work (30 percent) are computed on the base wage, not on the minimum.",
		},
		{
			Title:       "Probationary Period",
			Source:      "Labor Code §45(5)",
			Category:    "probation",
			EffectiveAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Content: "The employment contract may stipulate a probationary period of up to three months. A " +
				"shorter period may be extended once, but the total may not exceed three months; collective " +
				"agreements may allow up to six. During probation either party may terminate the employment " +
				"with immediate effect and without reasons. For fixed-term contracts shorter than a year the " +
				"probation may not exceed a quarter of the contract duration.",
		},
	}

	out := make(map[string]model.KBDocument, len(docs))

	for _, d := range docs {
		doc := model.KBDocument{
			Title:       d.Title,
			Content:     d.Content,
			Source:      d.Source,
			Category:    d.Category,
			EffectiveAt: d.EffectiveAt,
		}

		var existing model.KBDocument
		if err := db.Where("source = ?", d.Source).First(&existing).Error; err == nil {
			out[d.Source] = existing
			continue
		}

		if err := db.Create(&doc).Error; err != nil {
			log.Printf("Error seeding KB document %q: %v", d.Source, err)
			continue
		}
		out[d.Source] = doc

		seedDocumentEmbeddings(db, provider, doc)
	}

	log.Printf("✅ Knowledge base seeded: %d documents.", len(out))
	return out
}

func seedDocumentEmbeddings(db *gorm.DB, provider embedding.EmbeddingProvider, doc model.KBDocument) {
	chunks := utils.SplitText(doc.Content, chunkSize, chunkOverlap)
	for i, chunk := range chunks {
		res, err := provider.Generate(chunk, embedding.TaskDocument)
		if err != nil {
			log.Printf("Warn: embedding failed for %q chunk %d: %v", doc.Source, i, err)
			continue
		}
		row := model.KBDocumentEmbedding{
			KBDocumentId:   doc.Id,
			Chunk:          chunk,
			ChunkIndex:     i,
			EmbeddingValue: pgvector.NewVector(res.Embedding.Values),
		}
		if err := db.Create(&row).Error; err != nil {
			log.Printf("Error seeding embedding for %q chunk %d: %v", doc.Source, i, err)
		}
	}
}
