// Package http provides HTTP server and handler implementations.
//
// This file turns create request bodies, JSON or form encoded, into
// core.Candidate values. A field counts as present only when its value
// would be truthy in the browser: missing, null, false, 0 and "" do not.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// maxBodyBytes bounds create request bodies.
const maxBodyBytes = 1 << 20

// ErrInvalidBody is returned for bodies that cannot be read or decoded.
var ErrInvalidBody = errors.New("invalid request body")

// RequestBodyParser reads a request body once and decodes it as JSON or
// form data depending on its content.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of r's body.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body. JSON is chosen by content type, or by a leading
// '{' when no content type says otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = errors.Join(ErrInvalidBody, p.err)
		return p.err
	}

	body := bytes.TrimSpace(p.body)
	if len(body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.isJSON(body) {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		var data map[string]any
		if err := dec.Decode(&data); err != nil || data == nil {
			p.err = errors.Join(ErrInvalidBody, err)
			return p.err
		}
		p.jsonData = data
		return nil
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		p.err = errors.Join(ErrInvalidBody, err)
		return p.err
	}
	p.formData = form
	return nil
}

func (p *RequestBodyParser) isJSON(body []byte) bool {
	mediaType, _, err := mime.ParseMediaType(p.contentType)
	if err == nil {
		switch {
		case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
			return true
		case mediaType == "application/x-www-form-urlencoded":
			return false
		}
	}
	return body[0] == '{'
}

// Field returns key as a core.Field.
func (p *RequestBodyParser) Field(key string) core.Field {
	if p.jsonData != nil {
		return jsonField(p.jsonData[key])
	}
	if p.formData != nil {
		return formField(p.formData.Get(key))
	}
	return core.Field{}
}

// Candidate collects the create fields.
func (p *RequestBodyParser) Candidate() core.Candidate {
	return core.Candidate{
		Amount:      p.Field("amount"),
		Description: p.Field("description"),
		Category:    p.Field("category"),
		Type:        p.Field("type"),
		Date:        p.Field("date"),
	}
}

// ParseCandidate reads and decodes r's body into a candidate.
func ParseCandidate(w http.ResponseWriter, r *http.Request) (core.Candidate, error) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		return core.Candidate{}, err
	}
	return p.Candidate(), nil
}

// formField strips control characters from a form value; the rest of the
// value is kept as sent.
func formField(s string) core.Field {
	s = sanitizeInput(s)
	return core.Field{Value: s, Set: s != ""}
}

// jsonField applies browser truthiness to a decoded JSON value. Strings are
// kept exactly as sent.
func jsonField(v any) core.Field {
	switch val := v.(type) {
	case nil:
		return core.Field{}
	case string:
		return core.Field{Value: val, Set: val != ""}
	case bool:
		if !val {
			return core.Field{}
		}
		return core.Field{Value: "true", Set: true}
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			// Out of decimal range; still a non-zero number.
			return core.Field{Value: val.String(), Set: true}
		}
		return core.Field{Value: val.String(), Set: !d.IsZero()}
	default:
		// Arrays and objects are truthy and read as their browser string
		// form, so [7] is "7" and {} is "[object Object]".
		return core.Field{Value: jsString(val), Set: true}
	}
}

// jsString renders a decoded JSON value the way String() does in the browser.
func jsString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case json.Number:
		return val.String()
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = jsString(e)
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// sanitizeInput removes control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
