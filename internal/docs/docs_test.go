package docs

import (
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	got := strings.Join(Topics(), ",")
	if got != "groups,media,selection,sync" {
		t.Fatalf("Topics() = %q", got)
	}
}

func TestGet(t *testing.T) {
	for _, topic := range []string{"groups", " Media ", "SYNC"} {
		body, ok := Get(topic)
		if !ok || !strings.HasPrefix(body, "# ") {
			t.Fatalf("Get(%q) = %q, %v", topic, body, ok)
		}
	}
	for _, topic := range []string{"", "nope", "../docs"} {
		if _, ok := Get(topic); ok {
			t.Fatalf("Get(%q) should fail", topic)
		}
	}
}
