package audithook

// Action constants for audit events.
const (
	// Inventory actions
	ActionIngredientCreated = "ingredient.created"
	ActionIngredientUpdated = "ingredient.updated"
	ActionStockAdjusted     = "stock.adjusted"
	ActionStockLow          = "stock.low"

	// Menu actions
	ActionMenuCreated = "menu.created"
	ActionMenuUpdated = "menu.updated"

	// Order actions
	ActionOrderRecorded  = "order.recorded"
	ActionOrderProcessed = "order.processed"
	ActionOrderCompleted = "order.completed"
	ActionOrderCancelled = "order.cancelled"
	ActionOrderReopened  = "order.reopened"

	// Spending actions
	ActionPurchaseRecorded = "purchase.recorded"
	ActionExpenseRecorded  = "expense.recorded"

	// Integrity actions
	ActionReferenceMissing = "reference.missing"
)

// Resource constants for audit events.
const (
	ResourceIngredient = "ingredient"
	ResourceMenu       = "menu"
	ResourceOrder      = "order"
	ResourcePurchase   = "purchase"
	ResourceExpense    = "expense"
)

// Category constants for audit events.
const (
	CategoryInventory = "inventory"
	CategoryCatalog   = "catalog"
	CategorySales     = "sales"
	CategorySpending  = "spending"
	CategoryIntegrity = "integrity"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
