// Package organize asks the AI workflow to turn a submission's raw answers
// into an organized story and renders the reply as safe HTML.
package organize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/parisxmas/OxiDB/OxiStory/internal/catalog"
	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
)

// Result is the organized story in both forms.
type Result struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

type request struct {
	ID        string            `json:"id"`
	Respostas map[string]string `json:"respostas"`
}

type response struct {
	RespostaLimpa string `json:"respostaLimpa"`
}

// Client posts submissions to the organize webhook.
type Client struct {
	url    string
	client *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{url: url, client: &http.Client{Timeout: timeout}}
}

// Answers returns the non-empty content answers keyed by column. The phone
// number stays out of the AI request.
func Answers(sub *models.Submission) map[string]string {
	out := make(map[string]string)
	for _, f := range catalog.Fields() {
		if f.WizardKey == catalog.ContactField {
			continue
		}
		if v := strings.TrimSpace(sub.Answer(f.SchemaKey)); v != "" {
			out[f.SchemaKey] = v
		}
	}
	return out
}

func (c *Client) Organize(ctx context.Context, sub *models.Submission) (*Result, error) {
	body, err := json.Marshal(request{ID: sub.ID, Respostas: Answers(sub)})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build organize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post organize request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read organize response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("organize endpoint returned %s", resp.Status)
	}

	var out response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode organize response: %w", err)
	}
	return &Result{Markdown: out.RespostaLimpa, HTML: Render(out.RespostaLimpa)}, nil
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
	})
	return policy
}

// Render converts markdown to sanitized HTML.
func Render(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(md))
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return string(sanitizer().SanitizeBytes(markdown.Render(doc, r)))
}
