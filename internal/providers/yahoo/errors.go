package yahoo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MarkupError is returned when the upstream answers with an HTML page instead
// of JSON, typically a consent or rate-limit block page.
type MarkupError struct {
	StatusCode int
	Endpoint   string
	Title      string
}

func (e *MarkupError) Error() string {
	title := e.Title
	if title == "" {
		title = "untitled page"
	}
	return fmt.Sprintf("yahoo %s returned markup (status %d): %s", e.Endpoint, e.StatusCode, title)
}

// APIError is a structured upstream error.
type APIError struct {
	StatusCode  int
	Endpoint    string
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("yahoo %s error (status %d): %s: %s", e.Endpoint, e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("yahoo %s error (status %d): %s", e.Endpoint, e.StatusCode, e.Description)
}

// IsMarkup reports whether err came from an HTML block page.
func IsMarkup(err error) bool {
	var m *MarkupError
	return errors.As(err, &m)
}

func looksLikeMarkup(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '<'
}

func newMarkupError(status int, endpoint string, body []byte) *MarkupError {
	e := &MarkupError{StatusCode: status, Endpoint: endpoint}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		e.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return e
}

// errorEnvelope covers the error shapes of the finance, quoteResponse and
// quoteSummary envelopes.
type errorEnvelope struct {
	Finance       *envelopeBody `json:"finance"`
	QuoteResponse *envelopeBody `json:"quoteResponse"`
	QuoteSummary  *envelopeBody `json:"quoteSummary"`
}

type envelopeBody struct {
	Error *errorBody `json:"error"`
}

type errorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e errorEnvelope) first() *errorBody {
	for _, b := range []*envelopeBody{e.Finance, e.QuoteResponse, e.QuoteSummary} {
		if b != nil && b.Error != nil {
			return b.Error
		}
	}
	return nil
}

func newAPIError(status int, endpoint string, body []byte) *APIError {
	e := &APIError{StatusCode: status, Endpoint: endpoint}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if b := env.first(); b != nil {
			e.Code, e.Description = b.Code, b.Description
			return e
		}
	}
	e.Description = strings.TrimSpace(string(body))
	if len(e.Description) > 200 {
		e.Description = e.Description[:200]
	}
	return e
}
