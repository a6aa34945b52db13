// Package mentions turns post text into resolved agent references. The
// extraction heuristic is deliberately isolated behind the Extractor
// interface so it can be swapped without touching the obligation
// tracking state machine in the service layer.
package mentions

import (
	"context"
	"strings"
)

// Resolver maps a handle (case-insensitive agent ID or display name) to
// a registered agent ID. The agent directory repository implements it.
type Resolver interface {
	ResolveHandle(ctx context.Context, handle string) (string, bool, error)
}

// Extractor finds registered agents referenced in a piece of text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// MarkerExtractor recognizes @handle markers and resolves each distinct
// one against the agent directory. Unresolvable markers are dropped.
type MarkerExtractor struct {
	resolver Resolver
}

// NewMarkerExtractor creates an Extractor backed by the given resolver.
func NewMarkerExtractor(resolver Resolver) *MarkerExtractor {
	return &MarkerExtractor{resolver: resolver}
}

// Extract returns the distinct agent IDs referenced in text, in order
// of first appearance. Re-running Extract over the same text always
// yields the same set, which keeps obligation creation idempotent.
func (e *MarkerExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	seen := make(map[string]struct{})
	var resolved []string

	for _, marker := range ScanMarkers(text) {
		id, ok, err := e.resolver.ResolveHandle(ctx, marker)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		resolved = append(resolved, id)
	}
	return resolved, nil
}

// ScanMarkers returns the distinct @-prefixed handles found in text,
// lowercased, in order of first appearance. A marker is '@' at a word
// boundary followed by letters, digits, '_' or '-'.
func ScanMarkers(text string) []string {
	seen := make(map[string]struct{})
	var markers []string

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '@' {
			continue
		}
		if i > 0 && isHandleRune(runes[i-1]) {
			// mid-word '@' (email-like), not a mention marker
			continue
		}
		j := i + 1
		for j < len(runes) && isHandleRune(runes[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		handle := strings.ToLower(string(runes[i+1 : j]))
		if _, dup := seen[handle]; !dup {
			seen[handle] = struct{}{}
			markers = append(markers, handle)
		}
		i = j - 1
	}
	return markers
}

func isHandleRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}
