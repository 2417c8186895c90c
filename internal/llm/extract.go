package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

const extractionSystemPrompt = `You are an intelligence extraction assistant for a honeypot system.
Your job is to extract EVERY piece of useful information from scammer
messages, both the standard predefined fields AND any other information
the scammer provides.

Extract these PREDEFINED fields:
1. upiIds - UPI payment IDs (format: xyz@bank). Examples: scam@paytm, fraud@ybl.
2. phoneNumbers - phone numbers, 10-12 digits, any format (spaced, dashed, words).
3. phishingLinks - ONLY actual web URLs (http/https/www/hxxp or domain[.]tld). Do NOT put UPI IDs or email addresses here.
4. bankAccounts - bank account numbers, 8-16 digits.
5. ifscCodes - Indian bank branch codes: 4 uppercase letters + 0 + 6 alphanumeric chars, e.g. SBIN0001234.
6. names - ONLY actual human person names (e.g. "Rajesh Kumar"). Do NOT include titles alone, org names, or roles.
   If a title accompanies a name, extract only the name part ("Officer Vikram Singh" -> "Vikram Singh").
7. emails - standard email addresses (user@domain.tld).
8. caseIds - case/reference/FIR/complaint numbers (e.g. CASE-12345, REF-20230001, FIR/123/2024).
9. policyNumbers - insurance/policy numbers (e.g. POL-123456, LIC12345678).
10. orderNumbers - order/shipment/tracking numbers (e.g. ORD-12345, AWB1234567890).

AND extract ALL OTHER useful information into the "additionalIntel" object:
- Use descriptive snake_case keys for each type of information you find.
- Examples of what to capture: organization_names, locations, amounts, dates,
department_names, job_titles, threat_descriptions, promised_actions,
website_names, app_names, government_scheme_names, loan_details,
prize_details, invoice_numbers, customer_ids, employee_ids.
- Each key's value must be an array of strings.
- If nothing extra is found, set "additionalIntel" to {}.

Return ONLY valid JSON with exactly these keys:
upiIds, phoneNumbers, phishingLinks, bankAccounts, ifscCodes, names, emails, caseIds, policyNumbers, orderNumbers, additionalIntel.
All list fields must be arrays of strings. Extract ALL instances, even if obfuscated.`

// Extraction is the model's structured read of one message: the fixed
// categories plus a free-form dictionary whose keys the model chooses.
type Extraction struct {
	UPIIDs        []string            `json:"upiIds"`
	PhoneNumbers  []string            `json:"phoneNumbers"`
	PhishingLinks []string            `json:"phishingLinks"`
	BankAccounts  []string            `json:"bankAccounts"`
	IFSCCodes     []string            `json:"ifscCodes"`
	Names         []string            `json:"names"`
	Emails        []string            `json:"emails"`
	CaseIDs       []string            `json:"caseIds"`
	PolicyNumbers []string            `json:"policyNumbers"`
	OrderNumbers  []string            `json:"orderNumbers"`
	Additional    map[string][]string `json:"additionalIntel"`
}

// ExtractIntel runs the structured extraction prompt over one message,
// with content-hash caching. ErrUnavailable means the caller should fall
// back to its pattern passes, not treat the message as artifact-free.
func (e *Engine) ExtractIntel(ctx context.Context, text string) (Extraction, error) {
	key := hashKey("extract", text)
	if raw, ok := e.cache.Get(ctx, key); ok {
		var cached Extraction
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	}

	user := fmt.Sprintf("Extract ALL intelligence from this scammer message:\n\n%s\n\nReturn JSON only.", text)
	content, err := e.client.Complete(ctx, extractionSystemPrompt, user, e.analysisTemp, 400)
	if err != nil {
		return Extraction{}, err
	}

	var ext Extraction
	if err := json.Unmarshal([]byte(stripFences(content)), &ext); err != nil {
		return Extraction{}, fmt.Errorf("%w: decode extraction: %v", ErrUnavailable, err)
	}

	if raw, err := json.Marshal(ext); err == nil {
		e.cache.Set(ctx, key, string(raw), e.cacheTTL)
	}
	return ext, nil
}
