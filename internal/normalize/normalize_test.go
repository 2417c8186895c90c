package normalize

import (
	"strings"
	"testing"
)

func TestForDetection(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		wants []string
	}{
		{
			name:  "leetspeak digits inside words",
			in:    "B1tc01n transfer n0w",
			wants: []string{"bitcoin", "now"},
		},
		{
			name:  "symbol substitutions",
			in:    "p@yp@l ca$h",
			wants: []string{"paypal", "cash"},
		},
		{
			name:  "url obfuscation",
			in:    "Visit hxxps://test[.]com",
			wants: []string{"https://test.com"},
		},
		{
			name:  "spelled out dot",
			in:    "go to google dot com",
			wants: []string{"google.com"},
		},
		{
			name:  "zero width split keyword",
			in:    "pay\u200Bpal verification",
			wants: []string{"paypal"},
		},
		{
			name:  "cyrillic homoglyphs",
			in:    "раураl seсurity",
			wants: []string{"paypal", "security"},
		},
		{
			name:  "fullwidth characters",
			in:    "ＵＲＧＥＮＴ ＡＣＴＩＯＮ",
			wants: []string{"urgent action"},
		},
		{
			name:  "character spacing collapse",
			in:    "h t t p : / / s b i - l o g i n . x y z",
			wants: []string{"http://sbi-login.xyz"},
		},
		{
			name:  "hex encoded url",
			in:    "open 687474703a2f2f7365637572652d7362692e78797a today",
			wants: []string{"http://secure-sbi.xyz"},
		},
		{
			name:  "phone digits survive leet folding",
			in:    "call +919876543210 immediately",
			wants: []string{"+919876543210"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ForDetection(tc.in)
			for _, want := range tc.wants {
				if !strings.Contains(got, want) {
					t.Errorf("ForDetection(%q) = %q, want it to contain %q", tc.in, got, want)
				}
			}
		})
	}
}

func TestForDetectionEmpty(t *testing.T) {
	if got := ForDetection(""); got != "" {
		t.Errorf("ForDetection(\"\") = %q, want empty", got)
	}
	if got := ForDetection("   "); got != "" {
		t.Errorf("ForDetection(blank) = %q, want empty", got)
	}
}

func TestForDetectionIdempotent(t *testing.T) {
	inputs := []string{
		"B1tc01n at hxxps://fake[.]com",
		"send to scammer@paytm right n0w",
		"Y o u r a c c o u n t i s l o c k e d",
	}
	for _, in := range inputs {
		first := ForDetection(in)
		second := ForDetection(first)
		if first != second {
			t.Errorf("not idempotent for %q: first %q, second %q", in, first, second)
		}
	}
}

func TestForExtractionPreservesArtifacts(t *testing.T) {
	in := "Pay   to  victim@okhdfcbank,\u200B ref CASE-2291"
	got := ForExtraction(in)
	if !strings.Contains(got, "victim@okhdfcbank") {
		t.Errorf("handle mangled: %q", got)
	}
	if !strings.Contains(got, "CASE-2291") {
		t.Errorf("casing lost: %q", got)
	}
	if strings.Contains(got, "  ") || strings.Contains(got, "\u200B") {
		t.Errorf("whitespace not normalized: %q", got)
	}
}

func TestDeobfuscateURL(t *testing.T) {
	cases := map[string]string{
		"hxxps://example.com": "https://example.com",
		"h**ps://test.com":    "https://test.com",
		"paypal[.]com":        "paypal.com",
		"fake(dot)in":         "fake.in",
	}
	for in, want := range cases {
		if got := DeobfuscateURL(in); got != want {
			t.Errorf("DeobfuscateURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPhone(t *testing.T) {
	if got := Phone("+91 (987) 654-3210"); got != "+919876543210" {
		t.Errorf("Phone() = %q", got)
	}
}

func TestForDetectionStripsInvisibleCharacters(t *testing.T) {
	in := "b\u200Blo\u200Cck\u200Ded\u2060 ac\uFEFFcount"
	if got := ForDetection(in); got != "blocked account" {
		t.Errorf("ForDetection(%q) = %q, want %q", in, got, "blocked account")
	}
}

func TestForDetectionFoldsNukta(t *testing.T) {
	// Precomposed U+095B; NFKC decomposes it and the nukta is dropped.
	if got := ForDetection("\u095B"); got != "\u091C" {
		t.Errorf("ForDetection(U+095B) = %q, want %q", got, "\u091C")
	}
}
