package extract

import (
	"context"
	"strings"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/llm"
)

// Extractor issues the model extraction pass over one message.
type Extractor interface {
	ExtractIntel(ctx context.Context, text string) (llm.Extraction, error)
}

// Model runs the third pass: a model call that reads artifacts out of
// context the pattern passes cannot see, plus a free-form dictionary
// with model-chosen keys. A nil extractor or a degraded service yields
// an empty harvest; the regex passes still cover the message.
func Model(ctx context.Context, ext Extractor, raw string) Harvest {
	h := NewHarvest()
	if ext == nil {
		return h
	}
	out, err := ext.ExtractIntel(ctx, raw)
	if err != nil {
		return h
	}

	h.add(domain.CategoryPaymentHandles, compact(out.UPIIDs)...)
	h.add(domain.CategoryPhones, compact(out.PhoneNumbers)...)
	h.add(domain.CategoryLinks, compact(out.PhishingLinks)...)
	h.add(domain.CategoryBankAccounts, compact(out.BankAccounts)...)
	h.add(domain.CategoryBranchCodes, compact(out.IFSCCodes)...)
	h.add(domain.CategoryNames, compact(out.Names)...)
	h.add(domain.CategoryEmails, compact(out.Emails)...)
	h.add(domain.CategoryCaseIDs, compact(out.CaseIDs)...)
	h.add(domain.CategoryPolicyNumbers, compact(out.PolicyNumbers)...)
	h.add(domain.CategoryOrderNumbers, compact(out.OrderNumbers)...)

	for key, values := range out.Additional {
		key = strings.TrimSpace(key)
		values = compact(values)
		if key == "" || len(values) == 0 {
			continue
		}
		h.Additional[key] = append(h.Additional[key], values...)
	}
	return h
}

// compact trims values and drops the empty ones; a misbehaving model
// must not seed blank artifacts into the merge.
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
