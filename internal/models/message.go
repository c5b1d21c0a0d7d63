package models

import (
	"strings"
	"time"
)

// Message is one direct message between the current user and a counterparty.
// Created optimistically on send or server-confirmed on receipt; only the
// Read flag ever changes after creation.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// CounterpartyOf returns whichever end of the message is not the given user.
func (m Message) CounterpartyOf(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Inline marker delimiters. A message body either starts with exactly one
// marker pair or carries plain text; the two kinds never both match.
const (
	imageMarkerOpen  = "[IMAGE]"
	imageMarkerClose = "[/IMAGE]"
	gifMarkerOpen    = "[GIF]"
	gifMarkerClose   = "[/GIF]"
)

// ContentKind classifies a parsed message body.
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
	ContentGIF   ContentKind = "gif"
)

// Content is the parsed form of a message body. For image messages Payload
// holds the inline encoded image data; for GIF messages it holds the asset
// URL. Text carries any trailing free text.
type Content struct {
	Kind    ContentKind
	Payload string
	Text    string
}

// ComposeContent builds the wire body from typed text and an optional inline
// image payload. With an attachment the payload is wrapped in image markers
// and any text follows after a newline; without one the text passes through
// verbatim.
func ComposeContent(text, attachment string) string {
	if attachment == "" {
		return text
	}
	body := imageMarkerOpen + attachment + imageMarkerClose
	if text != "" {
		body += "\n" + text
	}
	return body
}

// ParseContent reverses ComposeContent. It detects at most one marker kind:
// composed bodies always start with the marker, so a prefix check keeps the
// two kinds mutually exclusive.
func ParseContent(body string) Content {
	if payload, rest, ok := extractMarker(body, imageMarkerOpen, imageMarkerClose); ok {
		return Content{Kind: ContentImage, Payload: payload, Text: rest}
	}
	if payload, rest, ok := extractMarker(body, gifMarkerOpen, gifMarkerClose); ok {
		return Content{Kind: ContentGIF, Payload: payload, Text: rest}
	}
	return Content{Kind: ContentText, Text: body}
}

func extractMarker(body, open, closing string) (payload, rest string, ok bool) {
	if !strings.HasPrefix(body, open) {
		return "", "", false
	}
	end := strings.Index(body, closing)
	if end < 0 {
		return "", "", false
	}
	payload = body[len(open):end]
	rest = body[end+len(closing):]
	rest = strings.TrimPrefix(rest, "\n")
	return payload, rest, true
}

// ComposeGIF wraps an externally hosted animated-image URL in GIF markers.
func ComposeGIF(url, text string) string {
	body := gifMarkerOpen + url + gifMarkerClose
	if text != "" {
		body += "\n" + text
	}
	return body
}
