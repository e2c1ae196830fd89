package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	yaml "gopkg.in/yaml.v3"

	"github.com/moriyoshi/mailaddr/internal/expand"
)

// RewriteRule replaces the "mailbox@domain" of matching addresses.
type RewriteRule struct {
	R *regexp.Regexp
	S string
}

// Rewrite returns the substituted address and whether the rule matched.
func (rr RewriteRule) Rewrite(addr string) (string, bool) {
	if !rr.R.MatchString(addr) {
		return addr, false
	}
	return rr.R.ReplaceAllString(addr, rr.S), true
}

func newRewriteRule(match, substitution string) (RewriteRule, error) {
	match = expand.ExpandEnv(match)
	substitution = expand.ExpandEnv(substitution)
	r, err := regexp.Compile(match)
	if err != nil {
		return RewriteRule{}, fmt.Errorf("failed to compile %q: %w", match, err)
	}
	return RewriteRule{R: r, S: substitution}, nil
}

func (rr *RewriteRule) unmarshalStructure(v map[string]interface{}) error {
	match, ok := v["match"].(string)
	if !ok {
		return fmt.Errorf("key 'match' is not a string")
	}
	substitution, ok := v["substitution"].(string)
	if !ok {
		return fmt.Errorf("key 'substitution' is not a string")
	}
	r, err := newRewriteRule(match, substitution)
	if err != nil {
		return err
	}
	*rr = r
	return nil
}

func (rr *RewriteRule) UnmarshalJSON(b []byte) error {
	var v map[string]interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return rr.unmarshalStructure(v)
}

func (rr *RewriteRule) UnmarshalYAML(n *yaml.Node) error {
	var v map[string]interface{}
	if err := n.Decode(&v); err != nil {
		return err
	}
	return rr.unmarshalStructure(v)
}

// RewriteRules are tried in order; the first matching rule wins. They are
// written either as a list of {match, substitution} objects or as a
// single match: substitution mapping whose entries are kept in document
// order.
type RewriteRules []RewriteRule

func (rrs *RewriteRules) UnmarshalJSON(b []byte) error {
	if b = bytes.TrimSpace(b); len(b) > 0 && b[0] == '{' {
		return rrs.unmarshalJSONMapping(b)
	}
	var rules interface{}
	if err := json.Unmarshal(b, &rules); err != nil {
		return err
	}
	return rrs.unmarshalInner(rules)
}

func (rrs *RewriteRules) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		// decode by hand to keep the order
		_rrs := make(RewriteRules, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			var match, substitution string
			if err := n.Content[i].Decode(&match); err != nil {
				return err
			}
			if err := n.Content[i+1].Decode(&substitution); err != nil {
				return fmt.Errorf("value for key %q is not a string: %w", match, err)
			}
			r, err := newRewriteRule(match, substitution)
			if err != nil {
				return err
			}
			_rrs = append(_rrs, r)
		}
		*rrs = _rrs
		return nil
	}
	var rules interface{}
	if err := n.Decode(&rules); err != nil {
		return err
	}
	return rrs.unmarshalInner(rules)
}

// unmarshalJSONMapping walks the tokens to keep the order of the keys.
func (rrs *RewriteRules) unmarshalJSONMapping(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	if _, err := dec.Token(); err != nil {
		return err
	}
	_rrs := RewriteRules{}
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		match := t.(string)
		var substitution string
		if err := dec.Decode(&substitution); err != nil {
			return fmt.Errorf("value for key %q is not a string: %w", match, err)
		}
		r, err := newRewriteRule(match, substitution)
		if err != nil {
			return err
		}
		_rrs = append(_rrs, r)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*rrs = _rrs
	return nil
}

func (rrs *RewriteRules) unmarshalInner(rules interface{}) error {
	switch rules := rules.(type) {
	case []interface{}:
		_rrs := make(RewriteRules, 0, len(rules))
		for _, r := range rules {
			r, ok := r.(map[string]interface{})
			if !ok {
				return fmt.Errorf("rule is not an object")
			}
			var rr RewriteRule
			if err := rr.unmarshalStructure(r); err != nil {
				return err
			}
			_rrs = append(_rrs, rr)
		}
		*rrs = _rrs
	case nil:
		*rrs = nil
	default:
		return fmt.Errorf("rules is not an object or an array")
	}
	return nil
}
