package kedai

import "github.com/xraph/kedai/id"

// ID is the primary identifier type for all kedai entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
