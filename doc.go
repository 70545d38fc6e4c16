// Package kedai provides the back-office ledger of a small food and
// beverage business: ingredient inventory, a menu with recipes, an
// append-only order log, purchases, expenses and the reports computed from
// them.
//
// Kedai is a library, not a service. The Ledger applies the business rules
// on top of a store and every backend (memory, SQLite, PostgreSQL,
// MongoDB) commits a mutation and its stock movements together:
//
//   - Processing an order deducts each recipe ingredient, clamping at zero
//   - Recording a purchase restocks the purchased ingredient
//   - Stock never goes negative
//   - Reports are pure functions of a store snapshot
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/kedai"
//	    "github.com/xraph/kedai/store/sqlite"
//	)
//
//	s, err := sqlite.Open("kedai.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	l := kedai.New(s)
//	if err := l.Start(ctx); err != nil { // migrates the store
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Orders
//
// The cashier fills a cart and checks it out:
//
//	var cart order.Cart
//	_ = cart.Add(nasiGoreng)
//	_ = cart.Add(esTeh)
//	res, err := l.Checkout(ctx, &cart)
//	// res.Changes lists the stock deductions, res.Missing any menu item
//	// or ingredient that could not be resolved.
//
// Unresolved references are skipped and reported by default. Use
// WithReferencePolicy(ReferenceStrict) to reject such mutations instead.
//
// # Reports
//
// Sales, purchase and expense reports are bucketed by hour of day, day of
// month or month of year in the location of the reference time:
//
//	r, err := l.SalesReport(ctx, report.DayOfMonth, time.Now())
//
// Cash flow, profit and loss, the dashboard and the inventory valuation
// complete the set; report/xlsx exports them as a workbook.
//
// # Money and quantities
//
// Money holds integer minor units (whole rupiah for IDR). Stock and recipe
// quantities are decimals, so 0.3 kg of rice per serving stays exact.
//
// # TypeID
//
// All entities use TypeID identifiers:
//
//	ingr_01h2xcejqtf2nbrexx3vqjhp41  // Ingredient ID
//	menu_01h2xcejqtf2nbrexx3vqjhp41  // Menu ID
//	ord_01h455vb4pex5vsknk084sn02q   // Order ID
package kedai
