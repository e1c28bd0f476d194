package dto

// Wire shapes for the Gemini generateContent REST endpoint.

type GeminiAPIRequest struct {
	Contents         []Content         `json:"contents"`
	Tools            []Tool            `json:"tools,omitempty"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is either text or inline image data, never both.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

// InlineData carries base64-encoded image bytes.
type InlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type Tool struct {
	GoogleSearch *GoogleSearch `json:"google_search,omitempty"`
}

type GoogleSearch struct{}

type GenerationConfig struct {
	Temperature      *float32 `json:"temperature,omitempty"`
	TopP             float32  `json:"topP,omitempty"`
	TopK             int      `json:"topK,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string   `json:"responseMimeType,omitempty"`
}

type GeminiAPIResponse struct {
	Candidates []Candidate     `json:"candidates"`
	Error      *GeminiAPIError `json:"error,omitempty"`
}

// Candidate is a candidate response from the Gemini API.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// GeminiAPIError is the structured error body returned on non-200 status.
type GeminiAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Text returns the first candidate's concatenated text parts.
func (r *GeminiAPIResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, part := range r.Candidates[0].Content.Parts {
		out += part.Text
	}
	return out
}

// GenerateRequest is the invocation layer's input: an ordered list of
// text and image parts plus generation settings.
type GenerateRequest struct {
	Prompt           string
	Images           []ImagePart
	Temperature      float32
	MaxOutputTokens  int
	ResponseMIMEType string
	EnableSearch     bool
}

type ImagePart struct {
	MIMEType string
	Data     []byte
}
