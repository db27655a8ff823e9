package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Provider defines the interface for LLM providers used as an extraction
// oracle. Providers are untrusted and possibly absent: callers treat any
// error as "no additional candidates".
type Provider interface {
	// Name returns the provider name
	Name() string

	// ExtractFacts asks the model to pull structured medical facts out of
	// a patient utterance
	ExtractFacts(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest contains the input for fact extraction
type ExtractRequest struct {
	// Text is the patient utterance to analyze
	Text string

	// Context carries recent conversation turns, oldest first
	Context []string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// RawFact is one fact as the oracle reports it, before boundary
// validation against the closed kind enumeration
type RawFact struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
	Span string `json:"span,omitempty"`
}

// ExtractResponse contains the oracle's output
type ExtractResponse struct {
	Facts      []RawFact
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// RatePerSecond and Burst pace extraction calls
	RatePerSecond float64
	Burst         int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:      "", // Disabled by default
		Model:         "",
		Timeout:       30,
		MaxTokens:     1000,
		RatePerSecond: 2,
		Burst:         4,
	}
}

const systemPrompt = "You are a medical intake assistant that extracts structured facts from patient statements. You only report what the patient actually said; you never diagnose."

// BuildPrompt constructs the extraction prompt. The response contract is
// strict JSON so the boundary parser can validate it into the closed
// candidate shape.
func BuildPrompt(text string, contextTurns []string) string {
	var b strings.Builder

	b.WriteString(`Analyze this patient statement and extract medical facts.

ALLOWED KINDS (use exactly these strings):
- allergy: allergies, intolerances, adverse reactions (include negations like "no known allergies")
- emergency_symptom: urgent symptoms (chest pain, difficulty breathing, loss of consciousness)
- critical_medication: high-risk medications (insulin, anticoagulants, chemotherapy)
- condition: diseases, disorders, chronic conditions
- medication: other medications, treatments, supplements
- family_history: conditions in the patient's family
- symptom: current complaints (pain, headache, nausea)
- behavioral_pattern: habits, recurring behaviors, missed appointments
- preference: appointment or communication preferences
- note: relevant information fitting no other kind

Return ONLY a JSON object, no prose:
{"facts":[{"kind":"allergy","text":"penicillin allergy","span":"allergic to penicillin"}]}

"text" is a short normalized statement; "span" is the exact substring it came from.
Return {"facts":[]} if the statement contains no medical information.
`)

	if len(contextTurns) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, turn := range contextTurns {
			fmt.Fprintf(&b, "- %s\n", turn)
		}
	}

	fmt.Fprintf(&b, "\nPatient statement: %q\n", text)
	return b.String()
}

// parseFactsJSON parses the oracle's reply into raw facts. Models wrap
// JSON in markdown fences or prose often enough that we locate the object
// by brace matching before unmarshaling.
func parseFactsJSON(reply string) ([]RawFact, error) {
	reply = strings.TrimSpace(reply)
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	var parsed struct {
		Facts []RawFact `json:"facts"`
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal model reply: %w", err)
	}
	return parsed.Facts, nil
}
