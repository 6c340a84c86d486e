package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Bounds for the structural fallback scan. Oversized or adversarial payloads
// get cut off rather than walked in full.
const (
	maxScanDepth = 4
	maxScanElems = 200
	maxScanHits  = 20
)

// bodyKeys are the top-level containers probed for a quote body, in priority
// order after the response itself.
var bodyKeys = []string{"data", "result", "response", "payload"}

// priceKeys are the field names treated as synonyms for last traded price.
// Order matters: the first usable key wins.
var priceKeys = []string{"LTP", "ltp", "lastPrice", "last_traded_price", "lastTradedPrice", "last"}

// containerKeys are nested sub-objects probed when a body has no direct match.
var containerKeys = []string{"quote", "market", "result"}

// scanSubstrings match key names (case-insensitive) during the fallback scan.
var scanSubstrings = []string{"ltp", "last", "price", "lt"}

// priceHit is one candidate found during extraction, with the path that
// produced it for debug logging.
type priceHit struct {
	Path  string
	Value float64
}

// ExtractPrice pulls a last-traded-price out of an arbitrary decoded quote
// response. Upstream schemas vary by provider, endpoint, and account tier, so
// nothing is assumed about the shape: direct keys are probed first, then
// conventional sub-containers, then a depth- and width-bounded structural scan
// of the whole payload. Returns false when no usable value exists anywhere; a
// malformed payload is "no price this cycle", never an error.
func ExtractPrice(resp any) (float64, bool) {
	hit, ok := extractPrice(resp)
	return hit.Value, ok
}

// extractPrice is ExtractPrice plus the path that matched, consumed by the
// poll loop's debug logging.
func extractPrice(resp any) (priceHit, bool) {
	if resp == nil {
		return priceHit{}, false
	}

	type body struct {
		name string
		val  any
	}
	bodies := []body{{name: "root", val: resp}}
	if m, ok := resp.(map[string]any); ok {
		for _, k := range bodyKeys {
			if v, present := m[k]; present {
				bodies = append(bodies, body{name: k, val: v})
			}
		}
	}

	// Direct key probes against each candidate body.
	for _, b := range bodies {
		if hit, ok := probeBody(b.name, b.val); ok {
			return hit, true
		}
	}

	// Nested sub-containers within each body.
	for _, b := range bodies {
		m, ok := b.val.(map[string]any)
		if !ok {
			continue
		}
		for _, ck := range containerKeys {
			if hit, ok := probeBody(b.name+"."+ck, m[ck]); ok {
				return hit, true
			}
		}
	}

	// Last resort: bounded structural scan for anything price-shaped.
	hits := deepScan(resp, "root", 0, nil)
	if len(hits) > 0 {
		return hits[0], true
	}
	return priceHit{}, false
}

// probeBody checks a single mapping for the known price keys, in order. A key
// holding null, an empty string, or an uncoercible value is skipped, not fatal.
func probeBody(name string, val any) (priceHit, bool) {
	m, ok := val.(map[string]any)
	if !ok {
		return priceHit{}, false
	}
	for _, k := range priceKeys {
		v, present := m[k]
		if !present || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		if f, ok := parsePrice(v); ok {
			return priceHit{Path: name + "." + k, Value: f}, true
		}
	}
	return priceHit{}, false
}

// deepScan walks the payload collecting leaves whose key name looks
// price-related and whose value coerces to a number. Map keys are visited in
// sorted order so the scan is deterministic regardless of Go's randomized map
// iteration; sequence elements are visited by index.
func deepScan(v any, path string, depth int, hits []priceHit) []priceHit {
	if v == nil || depth > maxScanDepth || len(hits) >= maxScanHits {
		return hits
	}
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := t[k]
			if keyLooksLikePrice(k) {
				if f, ok := parsePrice(child); ok {
					hits = append(hits, priceHit{Path: path + "." + k, Value: f})
					if len(hits) >= maxScanHits {
						return hits
					}
				}
			}
			hits = deepScan(child, path+"."+k, depth+1, hits)
		}
	case []any:
		for i, item := range t {
			if i >= maxScanElems {
				break
			}
			hits = deepScan(item, fmt.Sprintf("%s[%d]", path, i), depth+1, hits)
		}
	}
	return hits
}

func keyLooksLikePrice(key string) bool {
	lower := strings.ToLower(key)
	for _, sub := range scanSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// parsePrice coerces a leaf value to float64. String representations may carry
// thousands-separator commas ("19,245.75"). Anything else is not a price.
func parsePrice(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
