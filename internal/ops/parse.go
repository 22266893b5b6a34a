// Package ops implements the text operation interpreter: a stream of
// "action key=value ..." specifications mutating a *imageflow.Document,
// grounded on the reference CLI's cli_ops* dispatch chain.
package ops

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/imageflow/imageflow/internal/draw"
)

// Tokenize splits an op spec into whitespace-separated tokens, honoring
// single and double quotes and backslash escapes so values like
// rgba="10, 20, 30, 255" or a path containing a space survive as one
// token.
func Tokenize(text string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	var quote rune
	escaping := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, ch := range text {
		switch {
		case escaping:
			current.WriteRune(ch)
			escaping = false
		case ch == '\\':
			escaping = true
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				current.WriteRune(ch)
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case unicode.IsSpace(ch):
			flush()
		default:
			current.WriteRune(ch)
		}
	}

	if escaping {
		return nil, errors.New("invalid op: trailing escape character")
	}
	if quote != 0 {
		return nil, errors.New("invalid op: unterminated quoted value")
	}
	flush()
	return tokens, nil
}

// KV is the key=value bag parsed from an op spec's tokens after the
// leading action token.
type KV map[string]string

// ParseKeyValues parses tokens[startIndex:] as "key=value" pairs.
func ParseKeyValues(tokens []string, startIndex int) (KV, error) {
	kv := make(KV, len(tokens)-startIndex)
	for _, tok := range tokens[startIndex:] {
		split := strings.IndexByte(tok, '=')
		if split <= 0 || split+1 >= len(tok) {
			return nil, errors.Errorf("expected key=value token but got: %s", tok)
		}
		kv[tok[:split]] = tok[split+1:]
	}
	return kv, nil
}

func (kv KV) get(key string) (string, bool) {
	v, ok := kv[key]
	return v, ok
}

// Require returns an error naming every key in keys that kv is missing.
func (kv KV) Require(action string, keys ...string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := kv[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("%s requires %s=", action, strings.Join(missing, "=, "))
	}
	return nil
}

func (kv KV) str(key, fallback string) string {
	if v, ok := kv[key]; ok {
		return v
	}
	return fallback
}

func (kv KV) intOr(key string, fallback int) (int, error) {
	v, ok := kv[key]
	if !ok {
		return fallback, nil
	}
	return parseIntStrict(v, key)
}

func (kv KV) floatOr(key string, fallback float64) (float64, error) {
	v, ok := kv[key]
	if !ok {
		return fallback, nil
	}
	return parseDoubleStrict(v, key)
}

func (kv KV) boolOr(key string, fallback bool) (bool, error) {
	v, ok := kv[key]
	if !ok {
		return fallback, nil
	}
	return parseBoolFlag(v)
}

func parseIntStrict(text, fieldName string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer for %s: %s", fieldName, text)
	}
	if v < int64(minInt) || v > int64(maxInt) {
		return 0, errors.Errorf("integer out of range for %s: %s", fieldName, text)
	}
	return int(v), nil
}

func parseIntInRange(text, fieldName string, lo, hi int) (int, error) {
	v, err := parseIntStrict(text, fieldName)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, errors.Errorf("value out of range for %s: %s (expected %d..%d)", fieldName, text, lo, hi)
	}
	return v, nil
}

func parseDoubleStrict(text, fieldName string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid number for %s: %s", fieldName, text)
	}
	return v, nil
}

func parseByte(text, fieldName string) (uint8, error) {
	v, err := parseIntInRange(text, fieldName, 0, 255)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}

func parseBoolFlag(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, errors.Errorf("invalid boolean value: %s", value)
	}
}

func splitNonEmpty(text string, sep byte) []string {
	raw := strings.Split(text, string(sep))
	out := raw[:0:0]
	for _, v := range raw {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseIntPair(text string) (int, int, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("expected integer pair x,y but got: %s", text)
	}
	x, err := parseIntStrict(parts[0], "x")
	if err != nil {
		return 0, 0, err
	}
	y, err := parseIntStrict(parts[1], "y")
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func parseDoublePair(text string) (float64, float64, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("expected numeric pair x,y but got: %s", text)
	}
	x, err := parseDoubleStrict(parts[0], "x")
	if err != nil {
		return 0, 0, err
	}
	y, err := parseDoubleStrict(parts[1], "y")
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// parseDrawPoints parses "x0,y0;x1,y1;..." into a point list, requiring at
// least minPoints entries.
func parseDrawPoints(text string, minPoints int, action string) ([][2]int, error) {
	tokens := splitNonEmpty(text, ';')
	points := make([][2]int, 0, len(tokens))
	for _, tok := range tokens {
		x, y, err := parseIntPair(tok)
		if err != nil {
			return nil, err
		}
		points = append(points, [2]int{x, y})
	}
	if len(points) < minPoints {
		return nil, errors.Errorf("%s requires at least %d points in points=x0,y0;x1,y1;...", action, minPoints)
	}
	return points, nil
}

type rgba struct {
	r, g, b, a uint8
}

// parseRGBA parses "r,g,b,a", or "r,g,b" (implying a=255) when allowRGB.
func parseRGBA(text string, allowRGB bool) (rgba, error) {
	parts := strings.Split(text, ",")
	if len(parts) == 3 && allowRGB {
		r, err := parseByte(parts[0], "r")
		if err != nil {
			return rgba{}, err
		}
		g, err := parseByte(parts[1], "g")
		if err != nil {
			return rgba{}, err
		}
		b, err := parseByte(parts[2], "b")
		if err != nil {
			return rgba{}, err
		}
		return rgba{r, g, b, 255}, nil
	}
	if len(parts) != 4 {
		return rgba{}, errors.Errorf("expected rgba=r,g,b,a but got: %s", text)
	}
	r, err := parseByte(parts[0], "r")
	if err != nil {
		return rgba{}, err
	}
	g, err := parseByte(parts[1], "g")
	if err != nil {
		return rgba{}, err
	}
	b, err := parseByte(parts[2], "b")
	if err != nil {
		return rgba{}, err
	}
	a, err := parseByte(parts[3], "a")
	if err != nil {
		return rgba{}, err
	}
	return rgba{r, g, b, a}, nil
}

func toDrawColor(p rgba) draw.Color { return draw.Color{R: p.r, G: p.g, B: p.b} }

const (
	minInt = -1 << 63
	maxInt = 1<<63 - 1
)
