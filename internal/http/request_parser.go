package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"quickspend/internal/core"
	"quickspend/internal/view"
)

const maxBodyBytes = 1 << 20

// errMalformedBody reports a body that is neither JSON nor form data.
var errMalformedBody = errors.New("malformed request body")

// RequestBodyParser reads a create-expense body once and exposes its fields
// whether it was sent as JSON or as a form.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	isForm   bool
}

// NewRequestBodyParser reads and parses the request body.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	p := &RequestBodyParser{body: body}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	trimmed := bytes.TrimSpace(body)

	switch {
	case len(trimmed) == 0:
		p.formData = url.Values{}
	case mediaType == "application/json" || trimmed[0] == '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
		}
	default:
		p.isForm = true
		if p.formData, err = url.ParseQuery(string(trimmed)); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
		}
	}
	return p, nil
}

// Get returns a field as text. JSON numbers keep their literal digits.
// Values that are neither strings nor numbers read as empty.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return stringValue(p.jsonData[key])
	}
	return p.formData.Get(key)
}

// IsForm reports whether the body was form encoded.
func (p *RequestBodyParser) IsForm() bool {
	return p.isForm
}

// NewExpense extracts the create input.
func (p *RequestBodyParser) NewExpense() core.NewExpense {
	return core.NewExpense{
		Amount:      p.Get("amount"),
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Date:        p.Get("date"),
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

// parseViewState reads the list filters from the query string.
func parseViewState(q url.Values) view.State {
	return view.State{
		Category:    q.Get("category"),
		NewestFirst: strings.EqualFold(q.Get("sort_date_desc"), "true"),
	}
}

// wantsHTML reports whether the caller is a browser expecting a page.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
