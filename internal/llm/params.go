package llm

// Params are the sampling parameters sent with each request.
type Params struct {
	Model            string  `json:"model"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	TopK             int     `json:"top_k"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	N                int     `json:"n"`
	ResponseFormat   string  `json:"response_format"`
}

// DefaultParams are the SiliconFlow defaults the studio ships with.
var DefaultParams = Params{
	Model:            "Qwen/QwQ-32B",
	Temperature:      0.7,
	MaxTokens:        2000,
	TopP:             0.7,
	TopK:             50,
	FrequencyPenalty: 0.5,
	N:                1,
	ResponseFormat:   "text",
}

// Merge returns p with every zero field taken from def.
func (p Params) Merge(def Params) Params {
	if p.Model == "" {
		p.Model = def.Model
	}
	if p.Temperature == 0 {
		p.Temperature = def.Temperature
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = def.MaxTokens
	}
	if p.TopP == 0 {
		p.TopP = def.TopP
	}
	if p.TopK == 0 {
		p.TopK = def.TopK
	}
	if p.FrequencyPenalty == 0 {
		p.FrequencyPenalty = def.FrequencyPenalty
	}
	if p.N == 0 {
		p.N = def.N
	}
	if p.ResponseFormat == "" {
		p.ResponseFormat = def.ResponseFormat
	}
	return p
}
