package models

import "testing"

func TestComposeContent(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		attachment string
		want       string
	}{
		{"text only", "hello", "", "hello"},
		{"attachment only", "", "PAYLOAD", "[IMAGE]PAYLOAD[/IMAGE]"},
		{"attachment and text", "look", "PAYLOAD", "[IMAGE]PAYLOAD[/IMAGE]\nlook"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComposeContent(tt.text, tt.attachment); got != tt.want {
				t.Errorf("ComposeContent(%q, %q) = %q, want %q", tt.text, tt.attachment, got, tt.want)
			}
		})
	}
}

func TestParseContentRoundTrip(t *testing.T) {
	payload := "data:image/jpeg;base64,AAAA"
	body := ComposeContent("trailing text", payload)

	parsed := ParseContent(body)
	if parsed.Kind != ContentImage {
		t.Fatalf("Expected image kind, got %s", parsed.Kind)
	}
	if parsed.Payload != payload {
		t.Errorf("Payload = %q, want %q", parsed.Payload, payload)
	}
	if parsed.Text != "trailing text" {
		t.Errorf("Text = %q, want %q", parsed.Text, "trailing text")
	}
}

func TestParseContentGIF(t *testing.T) {
	body := ComposeGIF("https://example.com/a.gif", "nice")

	parsed := ParseContent(body)
	if parsed.Kind != ContentGIF {
		t.Fatalf("Expected gif kind, got %s", parsed.Kind)
	}
	if parsed.Payload != "https://example.com/a.gif" {
		t.Errorf("Payload = %q", parsed.Payload)
	}
	if parsed.Text != "nice" {
		t.Errorf("Text = %q, want %q", parsed.Text, "nice")
	}
}

func TestParseContentMarkersAreExclusive(t *testing.T) {
	// A GIF marker mentioned inside image trailing text must not turn the
	// message into a GIF, and vice versa.
	body := ComposeContent("[GIF]https://x[/GIF]", "PAYLOAD")
	parsed := ParseContent(body)
	if parsed.Kind != ContentImage {
		t.Fatalf("Expected image kind, got %s", parsed.Kind)
	}

	body = ComposeGIF("https://x", "[IMAGE]fake[/IMAGE]")
	parsed = ParseContent(body)
	if parsed.Kind != ContentGIF {
		t.Fatalf("Expected gif kind, got %s", parsed.Kind)
	}
}

func TestParseContentPlainText(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"plain", "just words"},
		{"unterminated marker", "[IMAGE]oops"},
		{"marker not at start", "see [IMAGE]x[/IMAGE]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParseContent(tt.body)
			if parsed.Kind != ContentText {
				t.Errorf("Expected text kind, got %s", parsed.Kind)
			}
			if parsed.Text != tt.body {
				t.Errorf("Text = %q, want %q", parsed.Text, tt.body)
			}
		})
	}
}

func TestCounterpartyOf(t *testing.T) {
	m := Message{SenderID: "alice", ReceiverID: "bob"}
	if got := m.CounterpartyOf("alice"); got != "bob" {
		t.Errorf("CounterpartyOf(alice) = %q, want bob", got)
	}
	if got := m.CounterpartyOf("bob"); got != "alice" {
		t.Errorf("CounterpartyOf(bob) = %q, want alice", got)
	}
}
