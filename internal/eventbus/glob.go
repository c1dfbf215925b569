package eventbus

import "strings"

// matchGlob reports whether a dotted event type matches a shell-style
// glob over dot-separated segments: "*" matches exactly one segment,
// "agent.*" matches "agent.created" but not "agent", and "*" alone
// matches any single-segment type as well as multi-segment types when
// used bare (a lone "*" is the wildcard-all case handled separately).
func matchGlob(glob, eventType string) bool {
	if glob == "*" {
		return true
	}
	globSegs := strings.Split(glob, ".")
	typeSegs := strings.Split(eventType, ".")
	if len(globSegs) != len(typeSegs) {
		return false
	}
	for i, g := range globSegs {
		if g == "*" {
			continue
		}
		if g != typeSegs[i] {
			return false
		}
	}
	return true
}

// matchAny reports whether any glob in globs matches eventType.
func matchAny(globs []string, eventType string) bool {
	for _, g := range globs {
		if matchGlob(g, eventType) {
			return true
		}
	}
	return false
}
