package rag

import (
	"fmt"
	"strconv"
	"strings"
)

// SystemPrompt is the fixed instruction prepended to every completion request.
const SystemPrompt = "You are a helpful and knowledgeable assistant for a 'Rate My Professor' service. " +
	"Your role is to help students find the best professors according to their queries. " +
	"When a student asks for recommendations, you will analyze their query and provide the top 3 professors " +
	"that best match their needs using Retrieval-Augmented Generation (RAG). " +
	"For each recommendation, provide the professor's name, subject area, and a brief review summarizing " +
	"their strengths based on available data. Make sure the recommendations are relevant and accurate, " +
	"focusing on the most important criteria specified by the student in their query"

// ContextPreamble introduces the retrieved records in the augmented user message.
const ContextPreamble = "Returned results from vector db (done automatically):"

// FormatContext renders the retrieved matches, in order, as a text block
// suitable for appending to a user message.
//
// The layout intentionally differs from the original JavaScript handler: that
// template literal carried its source indentation and a trailing blank line
// into every entry. Here each entry is "Professor/Review/Subject/Stars" lines
// with no leading whitespace, separated by a blank line. Keep it this way; the
// tests pin the exact text.
func FormatContext(matches []Match) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(ContextPreamble)

	for _, m := range matches {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "Professor: %s\n", m.Professor)
		fmt.Fprintf(&b, "Review: %s\n", m.Review)
		fmt.Fprintf(&b, "Subject: %s\n", m.Subject)
		fmt.Fprintf(&b, "Stars: %s\n", FormatStars(m.Stars))
	}

	return b.String()
}

// FormatStars renders a rating without trailing zeros ("5", "4.5").
func FormatStars(stars float64) string {
	return strconv.FormatFloat(stars, 'f', -1, 64)
}

// Assemble builds the message sequence sent to the completion service:
// the system prompt, every transcript message except the last, and a user
// message holding the last message's content followed by the context block.
// The transcript must not be empty.
func Assemble(transcript []Message, matches []Match) []Message {
	if len(transcript) == 0 {
		return nil
	}

	last := transcript[len(transcript)-1]
	messages := make([]Message, 0, len(transcript)+1)
	messages = append(messages, Message{Role: RoleSystem, Content: SystemPrompt})
	messages = append(messages, transcript[:len(transcript)-1]...)
	messages = append(messages, Message{
		Role:    RoleUser,
		Content: last.Content + FormatContext(matches),
	})

	return messages
}
