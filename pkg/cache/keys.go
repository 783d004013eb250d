package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// BuildKey joins prefix and parts with ":". Strings and scalars are
// formatted as-is, everything else is JSON encoded.
func BuildKey(prefix string, parts ...any) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, prefix)
	for _, p := range parts {
		segments = append(segments, keyPart(p))
	}
	return strings.Join(segments, ":")
}

func keyPart(p any) string {
	switch v := p.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, bool:
		return fmt.Sprint(v)
	case nil:
		return "null"
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprint(p)
	}
	return string(b)
}

// HashKey returns the hex sha256 of payload's JSON encoding, for keys whose
// natural form is unbounded (query text, embedding input).
func HashKey(payload any) string {
	b, err := json.Marshal(payload)
	if err != nil {
		b = []byte(fmt.Sprint(payload))
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// globToRegexp translates "*" and "?" wildcards to an anchored pattern.
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*`, ".*")
	quoted = strings.ReplaceAll(quoted, `\?`, ".")
	return regexp.Compile("^" + quoted + "$")
}

// remoteGlob escapes the characters Redis treats as glob syntax beyond "*"
// and "?", so the remote match agrees with globToRegexp.
func remoteGlob(pattern string) string {
	return globEscaper.Replace(pattern)
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)

func remoteKey(layer Layer, key string) string {
	return string(layer) + ":" + key
}
