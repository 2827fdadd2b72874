package model

// ActorType distinguishes automated accounts from people.
type ActorType string

const (
	ActorTypeBot   ActorType = "bot"
	ActorTypeHuman ActorType = "human"
)

// User represents a login-identified entity interacting with a pull request
type User struct {
	ID       string
	Username string
	Name     string
}

// Classification is the result of classifying an actor.
// It is a pure function of (login, name, configured pattern set):
// identical inputs always produce an identical Classification.
type Classification struct {
	ActorType   ActorType
	Reason      string
	MatchedRule string // empty when no rule fired
}

// IsBot reports whether the classified actor is automated.
func (c Classification) IsBot() bool {
	return c.ActorType == ActorTypeBot
}
