package main

import (
	"log"
	"time"

	"regassist-be/internal/model"

	"gorm.io/gorm"
)

// SeedLaborAgreements inserts the collective agreements the lookup tool
// answers from.
func SeedLaborAgreements(db *gorm.DB) {
	until2026 := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	agreements := []model.LaborAgreement{
		{
			Name:      "Metal Industry Collective Agreement",
			Sector:    "manufacturing",
			Region:    "national",
			Scope:     "sector",
			ValidFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Summary: "Extends the overtime cap to 300 hours per year, sets a 35% shift supplement and " +
				"guarantees a wage table 12% above the statutory minimum for skilled positions.",
			SourceURL: "https://agreements.example.org/metal-2024",
		},
		{
			Name:       "Construction Sector Framework Agreement",
			Sector:     "construction",
			Region:     "national",
			Scope:      "sector",
			ValidFrom:  time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
			ValidUntil: &until2026,
			Summary: "Allows a six-month working time reference period for weather-dependent work and " +
				"adds a daily site allowance plus travel time compensation beyond 25 km.",
			SourceURL: "https://agreements.example.org/construction-2023",
		},
		{
			Name:      "Healthcare Workers Agreement",
			Sector:    "healthcare",
			Region:    "national",
			Scope:     "sector",
			ValidFrom: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Summary: "Raises the night work supplement to 25%, grants two additional leave days for " +
				"on-call rotations and caps consecutive on-call duty at 24 hours.",
			SourceURL: "https://agreements.example.org/healthcare-2024",
		},
		{
			Name:      "Retail Chain Enterprise Agreement",
			Sector:    "retail",
			Region:    "capital",
			Scope:     "enterprise",
			ValidFrom: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Summary: "Sets Sunday work premiums at 50%, guarantees schedules published two weeks ahead " +
				"and adds a December attendance bonus of one week's wage.",
			SourceURL: "https://agreements.example.org/retail-2024",
		},
	}

	for _, a := range agreements {
		var existing model.LaborAgreement
		if err := db.Where("name = ?", a.Name).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&a).Error; err != nil {
			log.Printf("Error seeding labor agreement %q: %v", a.Name, err)
		}
	}
	log.Println("✅ Labor agreements seeded successfully.")
}

// SeedExpertProfiles inserts reviewer profiles across the trust spectrum;
// the lowest one sits under the default gate threshold on purpose.
func SeedExpertProfiles(db *gorm.DB) {
	experts := []model.ExpertProfile{
		{
			DisplayName: "Dr. Eva Martens",
			Email:       "eva.martens@regassist.local",
			Specialty:   "working_time",
			TrustScore:  0.92,
			ReviewCount: 148,
			Active:      true,
		},
		{
			DisplayName: "Jonas Keller",
			Email:       "jonas.keller@regassist.local",
			Specialty:   "termination",
			TrustScore:  0.74,
			ReviewCount: 52,
			Active:      true,
		},
		{
			DisplayName: "Petra Szabo",
			Email:       "petra.szabo@regassist.local",
			Specialty:   "wages",
			TrustScore:  0.41,
			ReviewCount: 9,
			Active:      true,
		},
	}

	for _, e := range experts {
		var existing model.ExpertProfile
		if err := db.Where("email = ?", e.Email).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&e).Error; err != nil {
			log.Printf("Error seeding expert profile %s: %v", e.Email, err)
		}
	}
	log.Println("✅ Expert profiles seeded successfully.")
}
