package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/llm"
)

type stubExtractor struct {
	out   llm.Extraction
	err   error
	calls int
}

func (s *stubExtractor) ExtractIntel(_ context.Context, _ string) (llm.Extraction, error) {
	s.calls++
	return s.out, s.err
}

func TestModelMapsAllCategories(t *testing.T) {
	stub := &stubExtractor{out: llm.Extraction{
		UPIIDs:        []string{"fraud@ybl"},
		PhoneNumbers:  []string{"+91 98765 43210"},
		PhishingLinks: []string{"http://fake-bank.com"},
		BankAccounts:  []string{"123456789012"},
		IFSCCodes:     []string{"SBIN0001234"},
		Names:         []string{" Vikram Singh "},
		Emails:        []string{"fraud@icici.com"},
		CaseIDs:       []string{"REF-20230001"},
		PolicyNumbers: []string{"POL-123456"},
		OrderNumbers:  []string{"ORD-12345"},
		Additional: map[string][]string{
			"amounts":   {"50000"},
			"locations": {"Mumbai", ""},
		},
	}}

	h := Model(context.Background(), stub, "the raw message")

	assert.Equal(t, []string{"fraud@ybl"}, h.Fields[domain.CategoryPaymentHandles])
	assert.Equal(t, []string{"+91 98765 43210"}, h.Fields[domain.CategoryPhones])
	assert.Equal(t, []string{"http://fake-bank.com"}, h.Fields[domain.CategoryLinks])
	assert.Equal(t, []string{"123456789012"}, h.Fields[domain.CategoryBankAccounts])
	assert.Equal(t, []string{"SBIN0001234"}, h.Fields[domain.CategoryBranchCodes])
	assert.Equal(t, []string{"Vikram Singh"}, h.Fields[domain.CategoryNames])
	assert.Equal(t, []string{"fraud@icici.com"}, h.Fields[domain.CategoryEmails])
	assert.Equal(t, []string{"REF-20230001"}, h.Fields[domain.CategoryCaseIDs])
	assert.Equal(t, []string{"POL-123456"}, h.Fields[domain.CategoryPolicyNumbers])
	assert.Equal(t, []string{"ORD-12345"}, h.Fields[domain.CategoryOrderNumbers])
	assert.Equal(t, []string{"50000"}, h.Additional["amounts"])
	assert.Equal(t, []string{"Mumbai"}, h.Additional["locations"], "blank values dropped")
}

func TestModelNilExtractor(t *testing.T) {
	h := Model(context.Background(), nil, "anything")
	assert.Empty(t, h.Fields)
	assert.Empty(t, h.Additional)
}

func TestModelDegradesOnError(t *testing.T) {
	stub := &stubExtractor{err: errors.New("service unavailable")}
	h := Model(context.Background(), stub, "anything")
	assert.Equal(t, 1, stub.calls)
	assert.Empty(t, h.Fields)
	assert.Empty(t, h.Additional)
}

func TestModelMergesWithPatternPasses(t *testing.T) {
	stub := &stubExtractor{out: llm.Extraction{
		Names:        []string{"Priya Sharma"},
		PhoneNumbers: []string{"98765 43210"},
	}}

	raw := "call 9876543210 about your account"
	merged := Merge(Patterns(raw), Model(context.Background(), stub, raw))

	assert.Equal(t, []string{"Priya Sharma"}, merged.Fields[domain.CategoryNames])
	assert.Equal(t, []string{"9876543210"}, merged.Fields[domain.CategoryPhones],
		"spaced model phone dedups against the pattern hit")
}
