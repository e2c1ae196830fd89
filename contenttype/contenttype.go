// Package contenttype parses Content-Type style header values:
//
//	type "/" subtype *(";" attribute "=" value)
//
// Parameter values may be tokens or quoted strings. A few kinds of breakage
// seen in real mail are tolerated, such as dots inside tokens and
// unquoted encoded-words ("name==?utf-8?b?...?=").
package contenttype

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/moriyoshi/mailaddr/internal/rfc822"
)

// ErrInvalidParameter is returned along with the usable part of the value
// when a parameter could not be parsed.
var ErrInvalidParameter = errors.New("invalid content-type parameter")

type Param struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

type ContentType struct {
	// Type is "type/subtype" as written, without surrounding whitespace.
	Type   string  `json:"type" yaml:"type"`
	Params []Param `json:"params,omitempty" yaml:"params,omitempty"`
}

// MediaType returns Type in lower case.
func (ct *ContentType) MediaType() string {
	return strings.ToLower(ct.Type)
}

// Param returns the value of the first parameter named name, compared
// case-insensitively.
func (ct *ContentType) Param(name string) (string, bool) {
	for _, p := range ct.Params {
		if strings.EqualFold(p.Key, name) {
			return p.Value, true
		}
	}
	return "", false
}

// String renders ct canonically: the media type in lower case, parameter
// names in lower case and values quoted when they are not tokens.
func (ct *ContentType) String() string {
	var sb strings.Builder
	sb.WriteString(ct.MediaType())
	for _, p := range ct.Params {
		sb.WriteString("; ")
		sb.WriteString(strings.ToLower(p.Key))
		sb.WriteByte('=')
		writeValue(&sb, p.Value)
	}
	return sb.String()
}

func isToken(v string) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		if !rfc822.IsTokenChar(v[i]) && v[i] != '.' {
			return false
		}
	}
	return true
}

func writeValue(sb *strings.Builder, v string) {
	if isToken(v) {
		sb.WriteString(v)
		return
	}
	sb.WriteByte('"')
	for i := 0; i < len(v); i++ {
		if v[i] == '"' || v[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(v[i])
	}
	sb.WriteByte('"')
}

// Parse parses a Content-Type value. A malformed type/subtype is a failure
// and gives a nil ContentType. A malformed parameter ends the parameter
// list; the type and the parameters read so far are returned together with
// an error wrapping ErrInvalidParameter.
func Parse(b []byte) (*ContentType, error) {
	p := rfc822.NewParser(b)
	ct, err := parseType(p)
	if err != nil {
		return nil, err
	}
	s := &ParamScanner{p: p}
	for s.Scan() {
		ct.Params = append(ct.Params, Param{Key: string(s.Key()), Value: string(s.Value())})
	}
	if err := s.Err(); err != nil {
		return ct, err
	}
	return ct, nil
}

// ParseString is like Parse but takes a string.
func ParseString(s string) (*ContentType, error) {
	return Parse([]byte(s))
}

func parseType(p *rfc822.Parser) (*ContentType, error) {
	var buf bytes.Buffer
	if _, err := p.ParseContentType(&buf); err != nil {
		return nil, fmt.Errorf("failed to parse content type: %w", err)
	}
	return &ContentType{Type: buf.String()}, nil
}
