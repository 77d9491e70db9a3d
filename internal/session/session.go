package session

import "github.com/google/uuid"

// Reference is one retrieved product attached to an answer, carrying only
// the display fields the conversational surface renders.
type Reference struct {
	Title      string `json:"title"`
	Price      string `json:"price"`
	Brand      string `json:"brand"`
	ProductURL string `json:"product_url"`
	ImageURL   string `json:"image_url"`
}

// ChatTurn is one message in a conversation. Created once, appended to the
// session, never mutated.
type ChatTurn struct {
	Role       string      `json:"role"`
	Content    string      `json:"content"`
	References []Reference `json:"references,omitempty"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session holds one conversation's turn history. The session layer owns it;
// the RAG core reads and appends but never retains a handle.
type Session struct {
	ID    string
	Turns []ChatTurn
}

func New() *Session {
	return &Session{ID: uuid.New().String()}
}

func (s *Session) Append(turn ChatTurn) {
	s.Turns = append(s.Turns, turn)
}

// Last returns the most recent turn, or a zero turn for an empty session.
func (s *Session) Last() ChatTurn {
	if len(s.Turns) == 0 {
		return ChatTurn{}
	}
	return s.Turns[len(s.Turns)-1]
}
