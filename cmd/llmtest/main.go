package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"

	"github.com/wolfman30/careai-platform/cmd/mainconfig"
	"github.com/wolfman30/careai-platform/internal/ai/llm"
	"github.com/wolfman30/careai-platform/internal/ai/skills"
	"github.com/wolfman30/careai-platform/internal/app/bootstrap"
	"github.com/wolfman30/careai-platform/internal/compliance"
	appconfig "github.com/wolfman30/careai-platform/internal/config"
	"github.com/wolfman30/careai-platform/pkg/logging"
)

// llmtest sends one skill prompt to every configured provider individually,
// then once through the fallback chain.
func main() {
	skillFlag := flag.String("skill", string(skills.TriageMessage), "skill to probe")
	langFlag := flag.String("lang", "en", "prompt language (ar, fr, en)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := appconfig.Load()
	logger := logging.New("warn")
	if !cfg.AI().HasProvider() {
		fmt.Println("No providers configured. Set OLLAMA_BASE_URL, GEMINI_API_KEY or BEDROCK_MODEL_ID.")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var awsCfg *aws.Config
	if cfg.BedrockModelID != "" {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			log.Fatalf("load aws config: %v", err)
		}
		awsCfg = &loaded
	}

	providers, cleanup, err := bootstrap.BuildProviders(ctx, cfg.AI(), awsCfg, nil, logger)
	if err != nil {
		log.Fatalf("build providers: %v", err)
	}
	defer cleanup()
	if len(providers) == 0 {
		log.Fatal("no usable providers after bootstrap")
	}

	handler, err := skills.Lookup(skills.ID(*skillFlag))
	if err != nil {
		log.Fatalf("%v: %s", err, *skillFlag)
	}
	lang := compliance.NormalizeLanguage(*langFlag)
	prompt := llm.Prompt{
		System:      handler.SystemPrompt(lang),
		User:        handler.BuildUserPrompt(sampleInput(handler.ID()), nil),
		MaxTokens:   handler.MaxTokens(),
		Temperature: handler.Temperature(),
	}

	fmt.Printf("Probing %d provider(s) with skill %s (%s)\n", len(providers), handler.ID(), lang)
	for i, p := range providers {
		fmt.Printf("\n[%d] %s (%s)\n", i+1, p.Name(), p.Model())
		attemptCtx, cancelAttempt := context.WithTimeout(ctx, cfg.AIProviderTimeout)
		start := time.Now()
		text, err := p.Generate(attemptCtx, prompt)
		cancelAttempt()
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			fmt.Printf("    FAIL after %v: %v\n", elapsed, err)
			continue
		}
		parsed, perr := handler.ParseResponse(text)
		fmt.Printf("    OK in %v, parsed=%t\n", elapsed, perr == nil)
		if perr == nil {
			fmt.Printf("    keys: %v\n", keys(parsed))
		} else {
			fmt.Printf("    raw: %.300s\n", text)
		}
	}

	client := llm.NewFallbackClient(providers, cfg.AIProviderTimeout, logger, nil)
	fmt.Println("\nFallback chain:")
	result, err := client.Generate(ctx, prompt)
	if err != nil {
		fmt.Printf("    FAIL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("    served by %s (%s)\n", result.Provider, result.Model)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sampleInput(id skills.ID) map[string]any {
	switch id {
	case skills.SummarizeLab:
		return map[string]any{"labResult": map[string]any{"results": []any{
			map[string]any{"test_name": "HbA1c", "value": 7.9, "unit": "%", "reference_range": "4.0-5.6"},
			map[string]any{"test_name": "LDL", "value": 96, "unit": "mg/dL", "reference_range": "<100"},
		}}}
	case skills.ExtractSymptoms:
		return map[string]any{"freeText": "Dry cough for two weeks, mild fever in the evenings, tired all the time."}
	case skills.DraftClinicalNote:
		return map[string]any{"transcript": "Patient reports lower back pain after lifting boxes last week. No numbness. Pain 5/10.", "noteType": "soap"}
	case skills.GenerateCarePlan:
		return map[string]any{"conditions": []any{"type 2 diabetes", "hypertension"}}
	case skills.InventoryForecast:
		return map[string]any{"items": []any{map[string]any{"name": "Amoxicillin 500mg", "stock": 40, "dailyUsage": 6}}}
	case skills.QualityCheck:
		return map[string]any{"content": "Referral: 54M, chest tightness on exertion, ECG normal. Please assess."}
	default:
		return map[string]any{"message": "Hello, can I move my appointment from Tuesday to Thursday?"}
	}
}
