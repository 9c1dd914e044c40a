package dispatch

// TextContent is one text block in a response envelope.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Envelope is the uniform response wrapper for every operation call.
// Failures of any kind are carried in-band with IsError set; transport
// never sees them as faults.
type Envelope struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

func textEnvelope(text string) Envelope {
	return Envelope{Content: []TextContent{{Type: "text", Text: text}}}
}

func errorEnvelope(text string) Envelope {
	return Envelope{Content: []TextContent{{Type: "text", Text: text}}, IsError: true}
}

// Text returns the first content block's text, or "" for an empty
// envelope. Convenience for tests and logging.
func (e Envelope) Text() string {
	if len(e.Content) == 0 {
		return ""
	}
	return e.Content[0].Text
}
