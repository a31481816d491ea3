package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// AuthorizationSet mirrors one permission's grant columns.
type AuthorizationSet struct {
	Guest  bool
	Users  []string
	Roles  []string
	Groups []string
}

type TreeNode struct {
	ID             uuid.UUID
	Kind           string
	ParentID       *uuid.UUID
	Name           sql.NullString
	ContentID      *uuid.UUID
	DisplayedOnMap sql.NullBool
	Owner          string
	Administration AuthorizationSet
	Create         AuthorizationSet
	Delete         AuthorizationSet
	Read           AuthorizationSet
	Write          AuthorizationSet
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CreatedBy      string
	ModifiedBy     string
}

type TreeNodeSettings struct {
	ID        uuid.UUID
	Version   int64
	NodeID    uuid.UUID
	UserID    string
	Open      bool
	Displayed bool
}
