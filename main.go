package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/tripplanner-poc/server/internal/core"
	"github.com/tripplanner-poc/server/internal/planner/engine"
	"github.com/tripplanner-poc/server/internal/planner/model"
	"github.com/tripplanner-poc/server/internal/planner/ports/gemini"
	"github.com/tripplanner-poc/server/internal/planner/providers"
	"github.com/tripplanner-poc/server/internal/planner/repo"
	"github.com/tripplanner-poc/server/internal/planner/session"
	logx "github.com/tripplanner-poc/server/pkg/logger"
	pkgredis "github.com/tripplanner-poc/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the planner demo,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Planner configs
	Extraction     model.ExtractionModelConfig
	Recommendation model.RecommendationModelConfig
	Session        model.SessionConfig
	Provider       model.ProviderConfig
}

func main() {
	fmt.Println("Trip planner orchestration demo...")
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.FromEnv()})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	fmt.Println("Connected to Redis successfully")

	ttl, err := time.ParseDuration(envCfg.Session.TTL)
	if err != nil {
		log.Fatalf("Invalid SESSION_TTL '%s': %v", envCfg.Session.TTL, err)
	}

	// ====================================================
	// Construct all port adapters once and inject them; the engine never
	// builds or caches adapters itself.
	cms, err := gemini.NewChatModels(ctx, gemini.ChatModelConfig{
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		ExtractionConfig: &envCfg.Extraction,
		RecConfig:        &envCfg.Recommendation,
	})
	if err != nil {
		log.Fatalf("Failed to create chat models: %v", err)
	}

	recs := gemini.NewRecommenders(cms, envCfg.Recommendation, providers.NewClient(envCfg.Provider))

	eng, err := engine.New(engine.Ports{
		Extractor:  gemini.NewExtractor(cms),
		Flights:    recs,
		Hotels:     recs,
		Activities: recs,
		Planner:    recs,
	}, repo.NewRedisCheckpointStore(rdb, ttl), envCfg.Session)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	mgr, err := session.NewManager(eng, repo.NewRedisCheckpointStore(rdb, ttl))
	if err != nil {
		log.Fatalf("Failed to build session manager: %v", err)
	}

	prefs := model.Preferences{
		PreferredAirlines: []string{},
		HotelAmenities:    []string{},
		BudgetLevel:       model.BudgetMidRange,
	}

	fmt.Println("\n🚀 Turn 1: incomplete trip description")
	id, status, err := mgr.StartSession(ctx, "I want to plan a trip to Paris. My max budget for a hotel is $200 per night.", prefs)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	fmt.Printf("Session %s status: %s\n", id, status)

	if status == model.StatusNeedsMoreInfo {
		fmt.Println("\n🚀 Turn 2: supplying the missing details")
		status, err = mgr.ResumeSession(ctx, id, "I'm flying from New York, leaving 06-15 and returning 06-22.")
		if err != nil {
			log.Fatalf("Failed to resume session: %v", err)
		}
		fmt.Printf("Session %s status: %s\n", id, status)
	}

	plan, err := mgr.GetPlan(ctx, id)
	if err != nil {
		log.Fatalf("Failed to get plan: %v", err)
	}

	fmt.Println("\n✅ Final Travel Plan:")
	fmt.Println(plan)
	fmt.Println("─────────────────────────────────────────────")
	fmt.Println("🎉 Planning session completed successfully!")
}
