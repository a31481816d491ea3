package node

import "time"

type CreatedEvent struct {
	Node      Node
	Actor     string
	Timestamp time.Time
}

func NewCreatedEvent(n Node, actor string) *CreatedEvent {
	return &CreatedEvent{Node: n, Actor: actor, Timestamp: time.Now()}
}

type RenamedEvent struct {
	Node      Node
	NewName   string
	Actor     string
	Timestamp time.Time
}

func NewRenamedEvent(n Node, newName, actor string) *RenamedEvent {
	return &RenamedEvent{Node: n, NewName: newName, Actor: actor, Timestamp: time.Now()}
}

type AccessControlUpdatedEvent struct {
	Node      Node
	Recursive bool
	Actor     string
	Timestamp time.Time
}

func NewAccessControlUpdatedEvent(n Node, recursive bool, actor string) *AccessControlUpdatedEvent {
	return &AccessControlUpdatedEvent{Node: n, Recursive: recursive, Actor: actor, Timestamp: time.Now()}
}

type RemovedEvent struct {
	Node      Node
	Actor     string
	Timestamp time.Time
}

func NewRemovedEvent(n Node, actor string) *RemovedEvent {
	return &RemovedEvent{Node: n, Actor: actor, Timestamp: time.Now()}
}

type BranchToggledEvent struct {
	Settings  *Settings
	Open      bool
	Timestamp time.Time
}

func NewBranchToggledEvent(s *Settings, open bool) *BranchToggledEvent {
	return &BranchToggledEvent{Settings: s, Open: open, Timestamp: time.Now()}
}
