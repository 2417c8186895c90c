package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
)

var titleCaser = cases.Title(language.English)

// NormalizePhone reduces a phone candidate to its 10-digit national form.
// Returns the digits and whether they make a valid number.
func NormalizePhone(raw string) (string, bool) {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		digits = digits[2:]
	}
	return digits, len(digits) == 10
}

// NormalizeLink canonicalizes a URL for dedup: lowercase, trailing
// slashes stripped, protocol prefix guaranteed.
func NormalizeLink(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	u = strings.TrimRight(u, "/")
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "http://" + u
	}
	return u
}

// Merge combines harvests from the extraction passes into one normalized,
// deduplicated harvest. Later sources never displace earlier values; the
// first spelling of an artifact wins.
func Merge(sources ...Harvest) Harvest {
	merged := NewHarvest()

	// Payment handles keep their original casing, dedup is case-insensitive.
	seen := map[string]struct{}{}
	for _, src := range sources {
		for _, handle := range src.Fields[domain.CategoryPaymentHandles] {
			key := strings.ToLower(strings.TrimSpace(handle))
			if key == "" || !strings.Contains(key, "@") {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged.add(domain.CategoryPaymentHandles, strings.TrimSpace(handle))
		}
	}

	seen = map[string]struct{}{}
	for _, src := range sources {
		for _, phone := range src.Fields[domain.CategoryPhones] {
			digits, ok := NormalizePhone(phone)
			if !ok {
				continue
			}
			if _, dup := seen[digits]; dup {
				continue
			}
			seen[digits] = struct{}{}
			merged.add(domain.CategoryPhones, digits)
		}
	}

	// Anything with an '@' is an address, never a link.
	seen = map[string]struct{}{}
	for _, src := range sources {
		for _, link := range src.Fields[domain.CategoryLinks] {
			if strings.Contains(link, "@") {
				continue
			}
			u := NormalizeLink(link)
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			merged.add(domain.CategoryLinks, u)
		}
	}

	// Ten digits exactly is a phone, never an account.
	seen = map[string]struct{}{}
	for _, src := range sources {
		for _, acc := range src.Fields[domain.CategoryBankAccounts] {
			digits := nonDigitRe.ReplaceAllString(acc, "")
			if len(digits) < 9 || len(digits) > 18 || phoneShaped(digits) {
				continue
			}
			if _, dup := seen[digits]; dup {
				continue
			}
			seen[digits] = struct{}{}
			merged.add(domain.CategoryBankAccounts, digits)
		}
	}

	seen = map[string]struct{}{}
	for _, src := range sources {
		for _, name := range src.Fields[domain.CategoryNames] {
			key := strings.ToLower(strings.TrimSpace(name))
			if len(key) <= 1 {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged.add(domain.CategoryNames, titleCaser.String(strings.TrimSpace(name)))
		}
	}

	seen = map[string]struct{}{}
	for _, src := range sources {
		for _, email := range src.Fields[domain.CategoryEmails] {
			e := strings.ToLower(strings.TrimSpace(email))
			if e == "" || !strings.Contains(e, "@") || !strings.Contains(e, ".") {
				continue
			}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			merged.add(domain.CategoryEmails, e)
		}
	}

	for _, cat := range []domain.Category{
		domain.CategoryCaseIDs,
		domain.CategoryPolicyNumbers,
		domain.CategoryOrderNumbers,
	} {
		seen = map[string]struct{}{}
		for _, src := range sources {
			for _, id := range src.Fields[cat] {
				trimmed := strings.TrimSpace(id)
				key := strings.ToUpper(trimmed)
				if key == "" {
					continue
				}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				merged.add(cat, trimmed)
			}
		}
	}

	seen = map[string]struct{}{}
	for _, src := range sources {
		for _, code := range src.Fields[domain.CategoryBranchCodes] {
			c := strings.ToUpper(strings.TrimSpace(code))
			if !ifscExactRe.MatchString(c) {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			merged.add(domain.CategoryBranchCodes, c)
		}
	}

	merged.Fields[domain.CategoryLinks] = dropAddressDomains(
		merged.Fields[domain.CategoryLinks],
		merged.Fields[domain.CategoryPaymentHandles],
		merged.Fields[domain.CategoryEmails],
	)

	for _, src := range sources {
		for key, values := range src.Additional {
			existing := merged.Additional[key]
			dups := map[string]struct{}{}
			for _, v := range existing {
				dups[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
			}
			for _, v := range values {
				trimmed := strings.TrimSpace(v)
				lower := strings.ToLower(trimmed)
				if trimmed == "" {
					continue
				}
				if _, dup := dups[lower]; dup {
					continue
				}
				dups[lower] = struct{}{}
				existing = append(existing, trimmed)
			}
			if len(existing) > 0 {
				merged.Additional[key] = existing
			}
		}
	}

	return merged
}

// dropAddressDomains filters out links that are really just the domain of
// a captured handle or email. user@gmail.com must not also surface as
// http://gmail.com through the spaced-URL pattern.
func dropAddressDomains(links, handles, emails []string) []string {
	domains := map[string]struct{}{}
	for _, list := range [][]string{handles, emails} {
		for _, addr := range list {
			if at := strings.LastIndex(addr, "@"); at >= 0 {
				d := strings.ToLower(strings.TrimSpace(addr[at+1:]))
				if d != "" {
					domains[d] = struct{}{}
				}
			}
		}
	}
	if len(domains) == 0 {
		return links
	}
	kept := links[:0]
	for _, u := range links {
		host := strings.TrimRight(protocolRe.ReplaceAllString(u, ""), "/")
		host = strings.ToLower(host)
		matched := false
		for d := range domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, u)
		}
	}
	return kept
}

// Apply folds a merged harvest into the session bundle and reports how
// many values were new. Existing bundle entries never change, so applying
// the same harvest twice is a no-op.
func Apply(bundle *domain.IntelBundle, merged Harvest) int {
	added := 0
	for _, cat := range domain.Categories {
		for _, v := range merged.Fields[cat] {
			if bundle.Add(cat, v) {
				added++
			}
		}
	}
	for key, values := range merged.Additional {
		for _, v := range values {
			if bundle.AddFreeform(key, v) {
				added++
			}
		}
	}
	return added
}
