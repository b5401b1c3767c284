package transport

import (
	"sort"
	"strings"
)

// Rewriter replaces well-known source prefixes with mirror prefixes
type Rewriter struct {
	prefixes []string
	rules    map[string]string
}

// NewRewriter creates a Rewriter from prefix → replacement rules. When several
// prefixes match, the longest one wins.
func NewRewriter(rules map[string]string) *Rewriter {
	r := &Rewriter{rules: make(map[string]string, len(rules))}
	for from, to := range rules {
		if from == "" {
			continue
		}
		r.rules[from] = to
		r.prefixes = append(r.prefixes, from)
	}
	sort.Slice(r.prefixes, func(i, j int) bool {
		if len(r.prefixes[i]) != len(r.prefixes[j]) {
			return len(r.prefixes[i]) > len(r.prefixes[j])
		}
		return r.prefixes[i] < r.prefixes[j]
	})
	return r
}

// Rewrite returns source with its first matching prefix replaced
func (r *Rewriter) Rewrite(source string) string {
	if r == nil {
		return source
	}
	for _, prefix := range r.prefixes {
		if strings.HasPrefix(source, prefix) {
			return r.rules[prefix] + strings.TrimPrefix(source, prefix)
		}
	}
	return source
}

// Len returns the number of rules
func (r *Rewriter) Len() int {
	if r == nil {
		return 0
	}
	return len(r.prefixes)
}
