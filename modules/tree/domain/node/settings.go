package node

import "github.com/google/uuid"

// Settings is per-(node, user) state. It is created lazily on first access
// with a variant-specific default, is never shared across users, and dies
// with its node.
type Settings struct {
	id        uuid.UUID
	version   int64
	nodeID    uuid.UUID
	userID    string
	open      bool
	displayed bool
}

type SettingsOption func(*Settings)

func WithSettingsID(id uuid.UUID) SettingsOption {
	return func(s *Settings) { s.id = id }
}

func WithVersion(version int64) SettingsOption {
	return func(s *Settings) { s.version = version }
}

func WithOpen(open bool) SettingsOption {
	return func(s *Settings) { s.open = open }
}

func WithDisplayed(displayed bool) SettingsOption {
	return func(s *Settings) { s.displayed = displayed }
}

func NewSettings(nodeID uuid.UUID, userID string, opts ...SettingsOption) *Settings {
	s := &Settings{
		id:      uuid.New(),
		version: 1,
		nodeID:  nodeID,
		userID:  userID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Settings) ID() uuid.UUID     { return s.id }
func (s *Settings) Version() int64    { return s.version }
func (s *Settings) NodeID() uuid.UUID { return s.nodeID }
func (s *Settings) UserID() string    { return s.userID }
func (s *Settings) Open() bool        { return s.open }
func (s *Settings) Displayed() bool   { return s.displayed }

func (s *Settings) SetOpen(open bool)           { s.open = open }
func (s *Settings) SetDisplayed(displayed bool) { s.displayed = displayed }
