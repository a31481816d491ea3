package node

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
)

// Kind discriminates the closed set of node variants.
type Kind string

const (
	// KindBranch is a container node. Children reference it by parent id;
	// they are never embedded, which is why tree-wide operations recurse.
	KindBranch Kind = "branch"
	// KindLeaf is a terminal node wrapping an externally-owned content item.
	KindLeaf Kind = "leaf"
)

func Kinds() []Kind {
	return []Kind{KindBranch, KindLeaf}
}

// Node is a member of the content tree. A nil ParentID marks a root.
type Node interface {
	ID() uuid.UUID
	Kind() Kind
	ParentID() *uuid.UUID
	AccessControl() *accesscontrol.AccessControl
	CreatedAt() time.Time
	UpdatedAt() time.Time
	CreatedBy() string
	ModifiedBy() string
}

type base struct {
	id         uuid.UUID
	parentID   *uuid.UUID
	acl        *accesscontrol.AccessControl
	createdAt  time.Time
	updatedAt  time.Time
	createdBy  string
	modifiedBy string
}

func (b *base) ID() uuid.UUID                               { return b.id }
func (b *base) ParentID() *uuid.UUID                        { return b.parentID }
func (b *base) AccessControl() *accesscontrol.AccessControl { return b.acl }
func (b *base) CreatedAt() time.Time                        { return b.createdAt }
func (b *base) UpdatedAt() time.Time                        { return b.updatedAt }
func (b *base) CreatedBy() string                           { return b.createdBy }
func (b *base) ModifiedBy() string                          { return b.modifiedBy }

type Option func(*base)

func WithID(id uuid.UUID) Option {
	return func(b *base) { b.id = id }
}

func WithParentID(parentID *uuid.UUID) Option {
	return func(b *base) { b.parentID = parentID }
}

func WithCreatedAt(t time.Time) Option {
	return func(b *base) { b.createdAt = t }
}

func WithUpdatedAt(t time.Time) Option {
	return func(b *base) { b.updatedAt = t }
}

func WithModifiedBy(userID string) Option {
	return func(b *base) { b.modifiedBy = userID }
}

func newBase(acl *accesscontrol.AccessControl, createdBy string, opts []Option) base {
	now := time.Now()
	b := base{
		id:         uuid.New(),
		acl:        acl,
		createdAt:  now,
		updatedAt:  now,
		createdBy:  createdBy,
		modifiedBy: createdBy,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Branch is a container node carrying its own name.
type Branch struct {
	base
	name string
}

func NewBranch(name string, acl *accesscontrol.AccessControl, createdBy string, opts ...Option) (*Branch, error) {
	if name == "" {
		return nil, errors.Wrap(ErrValidation, "branch name is required")
	}
	if acl == nil || acl.Owner() == "" {
		return nil, errors.Wrap(ErrValidation, "branch owner is required")
	}
	return &Branch{
		base: newBase(acl, createdBy, opts),
		name: name,
	}, nil
}

func (b *Branch) Kind() Kind   { return KindBranch }
func (b *Branch) Name() string { return b.name }

// Leaf wraps a content item owned by an external store. It has no name of
// its own; display names resolve through the content.
type Leaf struct {
	base
	contentID      uuid.UUID
	displayedOnMap bool
}

func NewLeaf(contentID uuid.UUID, acl *accesscontrol.AccessControl, createdBy string, opts ...Option) (*Leaf, error) {
	if contentID == uuid.Nil {
		return nil, errors.Wrap(ErrValidation, "leaf content id is required")
	}
	if acl == nil || acl.Owner() == "" {
		return nil, errors.Wrap(ErrValidation, "leaf owner is required")
	}
	return &Leaf{
		base:      newBase(acl, createdBy, opts),
		contentID: contentID,
	}, nil
}

func (l *Leaf) Kind() Kind { return KindLeaf }

func (l *Leaf) ContentID() uuid.UUID { return l.contentID }

// DisplayedOnMap is the variant default for a fresh per-user settings row.
func (l *Leaf) DisplayedOnMap() bool { return l.displayedOnMap }

func (l *Leaf) SetDisplayedOnMap(displayed bool) { l.displayedOnMap = displayed }
