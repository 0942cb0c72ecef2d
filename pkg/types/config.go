package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "reader-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds settings for the generation provider.
type AIConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the vendor implementation: gemini, openai, or groq.
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gemini-2.5-flash", "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider's default endpoint. Used for
	// OpenAI-compatible gateways and tests; ignored by the Gemini provider.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts for rate-limited HTTP
	// calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// PageConfig describes one HTML page scraped for news candidates.
type PageConfig struct {
	// URL is the page address.
	URL string `json:"url" yaml:"url"`

	// Source is the display name for items from this page (e.g. "bbc").
	Source string `json:"source" yaml:"source"`

	// Topics lists the topic identifiers this page serves.
	Topics []string `json:"topics" yaml:"topics"`

	// Item is the CSS selector matching one story container.
	Item string `json:"item" yaml:"item"`

	// Title, Link, and Summary are CSS selectors evaluated within Item.
	// Summary may be empty.
	Title   string `json:"title" yaml:"title"`
	Link    string `json:"link" yaml:"link"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// NewsConfig holds settings for the news-candidate aggregator.
type NewsConfig struct {
	HTTPConfig `yaml:",inline"`

	// Feeds maps a topic identifier to the RSS/Atom feed URLs serving it.
	Feeds map[string][]string `json:"feeds" yaml:"feeds"`

	// Pages lists HTML pages scraped with CSS selectors.
	Pages []PageConfig `json:"pages,omitempty" yaml:"pages,omitempty"`

	// MaxItems caps the number of candidates returned (default 12).
	MaxItems int `json:"max_items" yaml:"max_items"`

	// Window is how far back from the target date an item may be published
	// and still count as a candidate (default 72h).
	Window time.Duration `json:"window" yaml:"window"`

	// CacheTTL is how long aggregated results are cached (default 15m).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// GenerateConfig holds settings for the generation pipeline.
type GenerateConfig struct {
	// Levels is the number of difficulty levels to produce (default 3).
	Levels int `json:"levels" yaml:"levels"`

	// MinDraftLen is the minimum acceptable draft length in bytes after
	// citation stripping (default 200).
	MinDraftLen int `json:"min_draft_len" yaml:"min_draft_len"`

	// OutputDir is the directory for generated article output
	// (default "output/articles").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// StoreConfig holds settings for the checkpoint store.
type StoreConfig struct {
	// Path is the SQLite database path (default "reader-engine.db").
	Path string `json:"path" yaml:"path"`
}

// SpeechConfig holds settings for the text-to-speech bridge.
type SpeechConfig struct {
	// Python is the interpreter used to run the bridge script
	// (default "python3").
	Python string `json:"python" yaml:"python"`

	// Script is the path to the edge-tts bridge script.
	Script string `json:"script" yaml:"script"`

	// Voice is the edge-tts voice name (default "en-US-JennyNeural").
	Voice string `json:"voice" yaml:"voice"`

	// Rate and Pitch adjust delivery (e.g. "+0%", "+0Hz").
	Rate  string `json:"rate" yaml:"rate"`
	Pitch string `json:"pitch" yaml:"pitch"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, or error
	// (default info).
	Level string `json:"level" yaml:"level"`

	// Format selects the handler: text or json (default text).
	Format string `json:"format" yaml:"format"`
}

// Config groups all component configurations.
type Config struct {
	AI       AIConfig       `json:"ai" yaml:"ai"`
	News     NewsConfig     `json:"news" yaml:"news"`
	Generate GenerateConfig `json:"generate" yaml:"generate"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Speech   SpeechConfig   `json:"speech" yaml:"speech"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// DefaultConfig returns a Config populated with the documented defaults.
// The AI timeout must cover multi-minute completions on reasoning models.
func DefaultConfig() Config {
	return Config{
		AI: AIConfig{
			HTTPConfig: HTTPConfig{Timeout: 10 * time.Minute, UserAgent: "reader-engine/0.1"},
			Provider:   "gemini",
			Model:      "gemini-2.5-flash",
			MaxRetries: 3,
		},
		News: NewsConfig{
			HTTPConfig: HTTPConfig{Timeout: 20 * time.Second, UserAgent: "reader-engine/0.1"},
			MaxItems:   12,
			Window:     72 * time.Hour,
			CacheTTL:   15 * time.Minute,
		},
		Generate: GenerateConfig{
			Levels:      3,
			MinDraftLen: 200,
			OutputDir:   "output/articles",
		},
		Store: StoreConfig{Path: "reader-engine.db"},
		Speech: SpeechConfig{
			Python: "python3",
			Script: "scripts/tts_bridge.py",
			Voice:  "en-US-JennyNeural",
			Rate:   "+0%",
			Pitch:  "+0Hz",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}
