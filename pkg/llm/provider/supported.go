package provider

// ModelInfo describes a model offered by a provider.
type ModelInfo struct {
	ID            string            `json:"id"`
	DisplayName   string            `json:"display_name"`
	Provider      Type              `json:"provider"`
	Capabilities  ModelCapabilities `json:"capabilities"`
	Pricing       *ModelPricing     `json:"pricing,omitempty"`
	ContextWindow *int              `json:"context_window,omitempty"`
}

// ModelCapabilities lists the modalities a model supports.
type ModelCapabilities struct {
	Text     bool `json:"text"`
	Vision   bool `json:"vision"`
	ImageGen bool `json:"image_gen"`
	Files    bool `json:"files"`
	Audio    bool `json:"audio"`
}

// ModelPricing is the list price in USD per million tokens.
type ModelPricing struct {
	InputCostPer1M  float64 `json:"input_cost_per_1m"`
	OutputCostPer1M float64 `json:"output_cost_per_1m"`
}

var (
	chatCaps  = ModelCapabilities{Text: true, Vision: true, Files: true}
	audioCaps = ModelCapabilities{Text: true, Vision: true, Files: true, Audio: true}
	imageCaps = ModelCapabilities{ImageGen: true}
)

func window(n int) *int { return &n }

func price(in, out float64) *ModelPricing {
	return &ModelPricing{InputCostPer1M: in, OutputCostPer1M: out}
}

// catalog is the built-in model list per provider. OpenRouter has no static
// list.
var catalog = map[Type][]ModelInfo{
	OpenAI: {
		{ID: "gpt-4o", DisplayName: "GPT-4o", Capabilities: chatCaps, Pricing: price(2.5, 10.0), ContextWindow: window(128000)},
		{ID: "gpt-4o-mini", DisplayName: "GPT-4o Mini", Capabilities: chatCaps, Pricing: price(0.15, 0.6), ContextWindow: window(128000)},
		{ID: "gpt-4-turbo", DisplayName: "GPT-4 Turbo", Capabilities: chatCaps, Pricing: price(10.0, 30.0), ContextWindow: window(128000)},
		{ID: "dall-e-3", DisplayName: "DALL-E 3", Capabilities: imageCaps},
	},
	Anthropic: {
		{ID: "claude-sonnet-4-20250514", DisplayName: "Claude Sonnet 4", Capabilities: chatCaps, Pricing: price(3.0, 15.0), ContextWindow: window(200000)},
		{ID: "claude-opus-4-20250514", DisplayName: "Claude Opus 4", Capabilities: chatCaps, Pricing: price(15.0, 75.0), ContextWindow: window(200000)},
		{ID: "claude-haiku-4-20250514", DisplayName: "Claude Haiku 4", Capabilities: chatCaps, Pricing: price(0.4, 2.0), ContextWindow: window(200000)},
	},
	Google: {
		{ID: "gemini-1.5-pro", DisplayName: "Gemini 1.5 Pro", Capabilities: audioCaps, Pricing: price(1.25, 5.0), ContextWindow: window(2097152)},
		{ID: "gemini-1.5-flash", DisplayName: "Gemini 1.5 Flash", Capabilities: audioCaps, Pricing: price(0.075, 0.3), ContextWindow: window(1048576)},
		{ID: "imagen-3", DisplayName: "Imagen 3", Capabilities: imageCaps},
	},
}

// DefaultModels returns the built-in models of the configured provider.
// The result is never nil.
func (c *Config) DefaultModels() []ModelInfo {
	models := make([]ModelInfo, 0, len(catalog[c.ProviderType]))
	for _, m := range catalog[c.ProviderType] {
		m.Provider = c.ProviderType
		models = append(models, m)
	}
	return models
}

// FindModel looks a model up in the built-in catalog of every provider.
func FindModel(id string) (ModelInfo, bool) {
	for _, t := range SupportedProviders() {
		for _, m := range catalog[t] {
			if m.ID == id {
				m.Provider = t
				return m, true
			}
		}
	}
	return ModelInfo{}, false
}
