package app

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestConversationTitle(t *testing.T) {
	if got := conversationTitle("What should I eat today?"); got != "What should I eat today?" {
		t.Errorf("short title = %q", got)
	}
	if got := conversationTitle("   "); got != "New Conversation" {
		t.Errorf("blank title = %q", got)
	}

	long := strings.Repeat("word ", 60)
	got := conversationTitle(long)
	if words := len(strings.Fields(got)); words > 50 {
		t.Errorf("title has %d words, want <= 50", words)
	}

	oneWord := strings.Repeat("a", 300)
	got = conversationTitle(oneWord)
	if len(got) > 200 {
		t.Errorf("title length = %d, want <= 200", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated title should end with ellipsis, got %q", got[len(got)-10:])
	}

	multiByte := strings.Repeat("你", 300)
	got = conversationTitle(multiByte)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated title is not valid utf-8: %q", got)
	}
	if runes := []rune(got); len(runes) != 200 {
		t.Errorf("title runes = %d, want 200", len(runes))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated title should end with ellipsis")
	}
}

func TestIsSimpleGreeting(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"hi", true},
		{"Hello", true},
		{"hey there", true},
		{"what's up", true},
		{"hello how are you", true},
		{"hi, can you plan my week in detail please", false},
		{"explain quantum entanglement", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isSimpleGreeting(tc.in); got != tc.want {
			t.Errorf("isSimpleGreeting(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	withContext := buildSystemPrompt("You are a coach.", "User Preferences:\ndiet: vegan")
	if !strings.Contains(withContext, "=== USER CONTEXT ===") {
		t.Error("prompt with context must include the context header")
	}
	if !strings.Contains(withContext, "diet: vegan") {
		t.Error("prompt must carry the retrieved context")
	}
	if !strings.Contains(withContext, "Keep your responses concise") {
		t.Error("prompt must end with the conciseness instruction")
	}

	withoutContext := buildSystemPrompt("You are a coach.", "")
	if strings.Contains(withoutContext, "=== USER CONTEXT ===") {
		t.Error("empty context must not add a context header")
	}
	if !strings.HasPrefix(withoutContext, "You are a coach.") {
		t.Error("role prompt must come first")
	}
}
