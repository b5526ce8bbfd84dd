package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Bingo2Gether/internal/draw"
	"Bingo2Gether/internal/model"
)

const (
	defaultGeminiURL   = "https://generativelanguage.googleapis.com"
	defaultGeminiModel = "gemini-1.5-flash"
)

const systemInstruction = `You are the financial coach of Bingo2Gether, a savings game for couples.
Keep it varied: alternate physical, mental, luck and creative challenges.
Give concrete, high quality money advice, never generic tips.
Challenges must bring the couple together. Penalties are acts of service or affection, never humiliation.
Answer with a single JSON object and nothing else.`

// GeminiProvider calls the Gemini generateContent REST endpoint.
type GeminiProvider struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
	src     draw.Source
}

// NewGeminiProvider creates a provider with optional proxy support. timeout bounds
// every request.
func NewGeminiProvider(apiKey, modelName, proxyURL string, timeout time.Duration, src draw.Source) *GeminiProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GeminiProvider{
		APIKey:  apiKey,
		Model:   modelName,
		BaseURL: defaultGeminiURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		src: src,
	}
}

func (g *GeminiProvider) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"systemInstruction"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature      float64 `json:"temperature"`
		ResponseMimeType string  `json:"responseMimeType"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *GeminiProvider) Incentive(ctx context.Context, c Context, recent []string) (model.Incentive, error) {
	var b strings.Builder
	b.WriteString("CONTEXT:\n")
	fmt.Fprintf(&b, "- Total goal: %s\n", c.TotalGoal.StringFixed(2))
	fmt.Fprintf(&b, "- Deadline: %d months\n", c.DeadlineMonths)
	fmt.Fprintf(&b, "- Progress: %.1f%% (%d of %d numbers left)\n", c.ProgressPercent, c.RemainingNumbers, c.TotalNumbers)
	if c.Objective != "" {
		fmt.Fprintf(&b, "- Objective: %s\n", c.Objective)
	}
	fmt.Fprintf(&b, "\nDo not reuse these titles: %s\n", titlesJSON(lastN(recent, 5)))
	b.WriteString("\nGive one sharp saving tip about investing, money psychology or everyday savings hacks. ")
	b.WriteString(`Respond with {"title","practicalTip","bingoImpact","timeImpact"}.`)

	var inc model.Incentive
	if err := g.generate(ctx, b.String(), 0.9, &inc); err != nil {
		return model.Incentive{}, err
	}
	if inc.Title == "" || inc.PracticalTip == "" {
		return model.Incentive{}, fmt.Errorf("gemini incentive: incomplete response")
	}
	return inc, nil
}

func (g *GeminiProvider) Challenge(ctx context.Context, c Context, recent []string) (model.Challenge, error) {
	category := Categories[0]
	if g.src != nil {
		category = Categories[g.src.Intn(len(Categories))]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a NEW challenge for the couple %s and %s.\n", c.P1Name, c.P2Name)
	fmt.Fprintf(&b, "Do not reuse these titles: %s\n", titlesJSON(lastN(recent, 10)))
	fmt.Fprintf(&b, "Required category: %s\n", category)
	b.WriteString("Be original, avoid childish pranks, the penalty must be useful or affectionate. ")
	b.WriteString(`Respond with {"title","description","victoryCriteria","financialOption","taskOption"}.`)

	var ch model.Challenge
	if err := g.generate(ctx, b.String(), 1.1, &ch); err != nil {
		return model.Challenge{}, err
	}
	if ch.Title == "" || ch.Description == "" {
		return model.Challenge{}, fmt.Errorf("gemini challenge: incomplete response")
	}
	if ch.FinancialOption == "" {
		ch.FinancialOption = extraDrawOption
	}
	return ch, nil
}

func (g *GeminiProvider) generate(ctx context.Context, prompt string, temperature float64, out any) error {
	if g.APIKey == "" {
		return ErrNoCredentials
	}

	var reqBody geminiRequest
	reqBody.SystemInstruction = geminiContent{Parts: []geminiPart{{Text: systemInstruction}}}
	reqBody.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}}
	reqBody.GenerationConfig.Temperature = temperature
	reqBody.GenerationConfig.ResponseMimeType = "application/json"

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(g.BaseURL, "/"), url.PathEscape(g.Model), url.QueryEscape(g.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var gr geminiResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if gr.Error != nil {
		return fmt.Errorf("gemini API error %d: %s", gr.Error.Code, gr.Error.Message)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("gemini: empty response")
	}

	text := stripFences(gr.Candidates[0].Content.Parts[0].Text)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode coach payload: %w", err)
	}
	return nil
}

// stripFences removes markdown code fences the model sometimes adds.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func lastN(titles []string, n int) []string {
	if len(titles) > n {
		return titles[len(titles)-n:]
	}
	return titles
}

func titlesJSON(titles []string) string {
	if titles == nil {
		titles = []string{}
	}
	data, _ := json.Marshal(titles)
	return string(data)
}
