package kedai

import (
	"github.com/xraph/kedai/store"
	"github.com/xraph/kedai/types"
)

// Re-export common types so callers need not import the types package.

// Money is re-exported from types package.
type Money = types.Money

// Snapshot is re-exported from the store package.
type Snapshot = store.Snapshot

// Re-export Money constructors
var (
	IDR  = types.IDR
	Zero = types.Zero
	Sum  = types.Sum
)
