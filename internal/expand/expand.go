// Package expand substitutes ${name} references in configuration values.
package expand

import (
	"os"
	"regexp"
	"strings"
)

var re = regexp.MustCompile(`\$\{([a-zA-Z0-9_.-]+)(?::-([^}]*))?\}`)

// Expand replaces every ${name} in v with mapping(name). The form
// ${name:-default} gives default when the mapping yields an empty string.
func Expand(v string, mapping func(string) string) string {
	return re.ReplaceAllStringFunc(v, func(s string) string {
		m := re.FindStringSubmatch(s)
		if r := mapping(m[1]); r != "" {
			return r
		}
		return m[2]
	})
}

// Env resolves "env.NAME" from the process environment.
func Env(key string) string {
	if name, ok := strings.CutPrefix(key, "env."); ok {
		return os.Getenv(name)
	}
	return ""
}

// ExpandEnv is Expand with Env as the mapping.
func ExpandEnv(v string) string {
	return Expand(v, Env)
}
