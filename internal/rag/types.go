package rag

// Chat roles accepted in a transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a chat transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Match is a professor record returned by the vector index.
type Match struct {
	// Professor is the professor's name (the index record id).
	Professor string
	// Review is the review text stored with the record.
	Review string
	// Subject is the subject the professor teaches.
	Subject string
	// Stars is the star rating.
	Stars float64
}

// Fragment is one incremental piece of a streamed completion.
// A fragment with a non-nil Err is the last value sent on its channel.
type Fragment struct {
	Text string
	Err  error
}
