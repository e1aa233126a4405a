// Package dialogue drives the scripted conversation that collects a profile and presents
// ranked jobs.
package dialogue

import (
	"github.com/spigell/job-advisor/internal/matching"
	"github.com/spigell/job-advisor/internal/profile"
)

// Stage is a dialogue state.
type Stage string

const (
	StageStart            Stage = "start"
	StageChoice           Stage = "choice"
	StageAskQualification Stage = "ask_qualification"
	StageAskSkills        Stage = "ask_skills"
	StageAskFields        Stage = "ask_fields"
	StageAskSalary        Stage = "ask_salary"
	StageAfterMatches     Stage = "after_matches"
	// StageEnded is terminal; the session accepts no more turns.
	StageEnded Stage = "ended"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Turn is one rendered chat message.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is the state of one conversation. It is owned by a single caller at a time.
type Session struct {
	ID          string
	Stage       Stage
	Profile     profile.UserProfile
	LastMatches []matching.Result
	History     []Turn
}

// NewSession starts a conversation with the greeting already in its history.
func NewSession(id string) *Session {
	return &Session{
		ID:      id,
		Stage:   StageStart,
		History: []Turn{{Role: RoleAssistant, Content: Greeting}},
	}
}

// Ended reports whether the session has reached its terminal stage.
func (s *Session) Ended() bool {
	return s.Stage == StageEnded
}

// Greeting returns the first assistant turn.
func (s *Session) Greeting() string {
	if len(s.History) == 0 {
		return ""
	}
	return s.History[0].Content
}

// Snapshot returns a deep copy.
func (s *Session) Snapshot() Session {
	out := *s
	out.Profile = s.Profile.Clone()
	out.LastMatches = append([]matching.Result(nil), s.LastMatches...)
	out.History = append([]Turn(nil), s.History...)
	return out
}
