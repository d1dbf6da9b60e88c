// Seeds demo responder settings (including example keyword rules) into the
// store so the admin API has something to show on a fresh instance.
// Run: go run ./seed
package main

import (
	"context"
	"log"
	"time"

	"github.com/replydesk/responder/environments"
	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/internal/settings"
	"github.com/replydesk/responder/pkg/store"
)

func main() {
	cfg := environments.Load()

	storeClient, err := store.NewClient(cfg.Valkey)
	if err != nil {
		log.Fatalf("Failed to connect to Valkey: %v", err)
	}

	defer func() {
		if err := storeClient.Close(); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	settingsStore := settings.NewStore(storeClient, cfg.Keys.Settings)

	current, err := settingsStore.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	if len(current.Rules) > 0 {
		log.Printf("Settings already have %d rules, skipping seed", len(current.Rules))
		return
	}

	repairDelay := 300
	demo := domain.DefaultSettings()
	demo.Subject = "Thanks for getting in touch"
	demo.BusinessName = "Demo Workshop"
	demo.FromEmail = cfg.Mailer.From
	demo.SystemInstructions = "We are a small repair and sales workshop. Be warm and direct."
	demo.Rules = []domain.Rule{
		{
			Name:         "Repairs",
			Keywords:     []string{"repair", "broken", "fix"},
			Priority:     0,
			Instructions: "Ask for a photo of the damage and mention the free estimate.",
			DelaySeconds: &repairDelay,
		},
		{
			Name:         "Sales",
			Keywords:     []string{"buy", "price", "quote"},
			Priority:     5,
			Instructions: "Point them at the catalog and offer a callback.",
		},
	}

	if _, err := settingsStore.Save(ctx, demo); err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}

	log.Println("Seed completed successfully")
}
