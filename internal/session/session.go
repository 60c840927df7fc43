// Package session translates between the HTTP cookie header and a
// structured session object. Reads never fail: a missing, malformed, or
// expired cookie degrades to a fresh anonymous session. Writes go through
// a Manager and do fail, because an uncommitted login must not be treated
// as a login.
package session

import "encoding/json"

// well-known value keys
const (
	keyUserID   = "userID"
	keyTimezone = "timezone"
)

// Session is in-memory state only. Mutations are not visible to other
// requests until committed, at which point the whole payload is
// re-serialized, never patched.
type Session struct {
	id     string
	values map[string]string
	flash  map[string]string
}

// New returns an empty anonymous session.
func New() *Session {
	return &Session{
		values: map[string]string{},
		flash:  map[string]string{},
	}
}

type payload struct {
	Values map[string]string `json:"values"`
	Flash  map[string]string `json:"flash,omitempty"`
}

func decode(id string, raw []byte) (*Session, bool) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	s := New()
	s.id = id
	for k, v := range p.Values {
		s.values[k] = v
	}
	for k, v := range p.Flash {
		s.flash[k] = v
	}
	return s, true
}

func (s *Session) encode() ([]byte, error) {
	return json.Marshal(payload{Values: s.values, Flash: s.flash})
}

// Get returns the value for key. A flash value is returned once and then
// discarded; the discard becomes durable on the next commit.
func (s *Session) Get(key string) (string, bool) {
	if v, ok := s.values[key]; ok {
		return v, true
	}
	if v, ok := s.flash[key]; ok {
		delete(s.flash, key)
		return v, true
	}
	return "", false
}

func (s *Session) Set(key, value string) {
	s.values[key] = value
}

func (s *Session) Unset(key string) {
	delete(s.values, key)
}

// Flash stores a one-shot value, typically a user-facing notice.
func (s *Session) Flash(key, value string) {
	s.flash[key] = value
}

// UserID returns the authenticated user id, or "" for anonymous sessions.
func (s *Session) UserID() string {
	v, _ := s.Get(keyUserID)
	return v
}

func (s *Session) SetUserID(id string) {
	s.Set(keyUserID, id)
}

func (s *Session) ClearUserID() {
	s.Unset(keyUserID)
}

func (s *Session) Timezone() string {
	v, _ := s.Get(keyTimezone)
	return v
}

func (s *Session) SetTimezone(tz string) {
	s.Set(keyTimezone, tz)
}
