package catalog

import "strings"

const catalogSiteURL = "https://www.jiosaavn.com"

var entityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&apos;", "'",
)

// DecodeString replaces the five basic HTML entities in one left-to-right
// pass, so "&amp;quot;" becomes "&quot;" and not a quote.
func DecodeString(s string) string {
	return entityReplacer.Replace(s)
}

// DecodeEntities walks a decoded JSON value and decodes every string in it.
// Object keys whose value links back to the upstream catalog site are dropped.
func DecodeEntities(v any) any {
	switch val := v.(type) {
	case string:
		return DecodeString(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = DecodeEntities(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, item := range val {
			if s, ok := item.(string); ok && strings.HasPrefix(s, catalogSiteURL) {
				continue
			}
			out[key] = DecodeEntities(item)
		}
		return out
	default:
		return v
	}
}
