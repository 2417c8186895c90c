// Package domain defines the core data model for honeypot sessions.
package domain

import "strings"

// Category identifies one structured artifact type in an IntelBundle.
type Category string

const (
	CategoryPhones         Category = "phoneNumbers"
	CategoryPaymentHandles Category = "paymentHandles"
	CategoryLinks          Category = "links"
	CategoryBankAccounts   Category = "bankAccounts"
	CategoryBranchCodes    Category = "branchCodes"
	CategoryNames          Category = "names"
	CategoryEmails         Category = "emails"
	CategoryCaseIDs        Category = "caseIds"
	CategoryPolicyNumbers  Category = "policyNumbers"
	CategoryOrderNumbers   Category = "orderNumbers"
)

// Categories lists every structured category in canonical table order.
// Tie-breaks in the planner and response rendering rely on this order.
var Categories = []Category{
	CategoryPhones,
	CategoryPaymentHandles,
	CategoryLinks,
	CategoryBankAccounts,
	CategoryBranchCodes,
	CategoryNames,
	CategoryEmails,
	CategoryCaseIDs,
	CategoryPolicyNumbers,
	CategoryOrderNumbers,
}

// IntelBundle is the cumulative, deduplicated intelligence collected over a
// session. Structured categories hold normalized values with set semantics;
// Additional holds free-form findings keyed by whatever the semantic pass
// decided to call them (organizations, amounts, threats, ...).
type IntelBundle struct {
	Fields     map[Category][]string `json:"fields"`
	Additional map[string][]string   `json:"additional"`
}

// NewIntelBundle returns a bundle with every structured category present.
func NewIntelBundle() *IntelBundle {
	b := &IntelBundle{
		Fields:     make(map[Category][]string, len(Categories)),
		Additional: make(map[string][]string),
	}
	for _, c := range Categories {
		b.Fields[c] = []string{}
	}
	return b
}

// Backfill adds any structured categories missing from an older stored
// bundle. Applied on session load so sessions persisted before a category
// existed still satisfy the fixed-shape contract.
func (b *IntelBundle) Backfill() {
	if b.Fields == nil {
		b.Fields = make(map[Category][]string, len(Categories))
	}
	for _, c := range Categories {
		if _, ok := b.Fields[c]; !ok {
			b.Fields[c] = []string{}
		}
	}
	if b.Additional == nil {
		b.Additional = make(map[string][]string)
	}
}

// Add inserts a normalized value into a category set. Returns true when the
// value was new; adding a value already present is a no-op.
func (b *IntelBundle) Add(cat Category, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, existing := range b.Fields[cat] {
		if strings.EqualFold(existing, value) {
			return false
		}
	}
	b.Fields[cat] = append(b.Fields[cat], value)
	return true
}

// AddFreeform appends a value under a free-form key, deduplicating
// case-insensitively within that key.
func (b *IntelBundle) AddFreeform(key, value string) bool {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return false
	}
	for _, existing := range b.Additional[key] {
		if strings.EqualFold(existing, value) {
			return false
		}
	}
	b.Additional[key] = append(b.Additional[key], value)
	return true
}

// Has reports whether a category holds at least one value.
func (b *IntelBundle) Has(cat Category) bool {
	return len(b.Fields[cat]) > 0
}

// Count returns the total number of structured values in the bundle.
func (b *IntelBundle) Count() int {
	n := 0
	for _, values := range b.Fields {
		n += len(values)
	}
	return n
}

// CategoriesFilled returns how many structured categories hold a value.
func (b *IntelBundle) CategoriesFilled() int {
	n := 0
	for _, c := range Categories {
		if b.Has(c) {
			n++
		}
	}
	return n
}
