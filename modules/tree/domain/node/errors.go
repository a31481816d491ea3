package node

import "github.com/routenest/routenest/pkg/serrors"

var (
	// ErrNotFoundOrForbidden is the unified outcome for "absent" and
	// "present but unauthorized". The two are never distinguished so a
	// caller cannot probe for the existence of nodes it may not see.
	ErrNotFoundOrForbidden = serrors.NewError(
		"TREE_NOT_FOUND_OR_FORBIDDEN",
		"node not found or access denied",
		"Tree.NotFoundOrForbidden",
	)

	ErrValidation = serrors.NewError(
		"TREE_VALIDATION",
		"invalid node data",
		"Tree.Validation",
	)
)
