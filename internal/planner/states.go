package planner

import "github.com/abuzarsid7/Agentic-Honeypot/internal/domain"

// StateConfig drives one dialogue state: how many turns the persona
// stays in it, which artifact categories it probes for (in priority
// order), and the canned questions used when generation is offline.
type StateConfig struct {
	Goal       string
	Budget     int
	Priorities []domain.Category
	Templates  []string
}

var stateConfigs = map[domain.State]StateConfig{
	domain.StateInit: {
		Goal:   "Get the caller's name, organization, and a case or reference number",
		Budget: 2,
		Priorities: []domain.Category{
			domain.CategoryNames, domain.CategoryCaseIDs, domain.CategoryPhones,
		},
		Templates: []string{
			"Hello? Who is this calling? Can you tell me your full name please?",
			"I didn't catch that. What is your name and which organization are you from?",
			"Sorry, what is the reference number or case ID for this matter?",
			"Can you give me a number I can call back on to verify this?",
			"What is your employee ID? And what department do you work in?",
			"I need to note this down. What is the official case number you are referring to?",
		},
	},
	domain.StateProbeReason: {
		Goal:   "Get their name, case number, a callback phone number, and an email for the official notice",
		Budget: 5,
		Priorities: []domain.Category{
			domain.CategoryNames, domain.CategoryCaseIDs,
			domain.CategoryPhones, domain.CategoryEmails,
		},
		Templates: []string{
			"What is the case number or reference ID for this issue?",
			"Can you tell me your full name and your employee ID?",
			"What phone number can I call back on to verify this with your office?",
			"Can you send me the official notice? What is the email address it will come from?",
			"What is the direct landline number for your department?",
			"I want to note your details. What is your name and official email ID?",
			"Is there a complaint number or FIR number I should know about?",
			"Which policy or order number is this related to? I have several.",
		},
	},
	domain.StateProbePayment: {
		Goal:   "Get the UPI ID, bank account number, IFSC code, and beneficiary name",
		Budget: 6,
		Priorities: []domain.Category{
			domain.CategoryPaymentHandles, domain.CategoryBankAccounts,
			domain.CategoryBranchCodes,
		},
		Templates: []string{
			"Okay, what is the UPI ID I should send the money to?",
			"What is the full bank account number and the IFSC code?",
			"Whose name is the UPI ID registered under?",
			"Can you tell me the account holder's full name for the bank transfer?",
			"What is the payment reference number I should mention while transferring?",
			"What is the beneficiary name that will show when I enter this account number?",
			"Which bank does this account belong to? What is the branch name?",
			"Can you also give me your phone number in case the payment fails?",
			"What receipt or reference number will I get after the payment?",
			"What is the exact UPI ID? I want to make sure I send to the right place.",
		},
	},
	domain.StateProbeLink: {
		Goal:   "Get the exact URL, the email it was sent from, and any reference numbers",
		Budget: 5,
		Priorities: []domain.Category{
			domain.CategoryLinks, domain.CategoryEmails,
		},
		Templates: []string{
			"Can you send me the link? I want to see the full URL.",
			"What is the exact website address I need to open?",
			"What is the exact URL? I need to copy it carefully.",
			"Can you email me the link instead? What is your official email address?",
			"I didn't receive the link. Can you send it again?",
			"What email address will the link come from? I want to check my inbox.",
			"Before I click, what is the reference number I should enter on the website?",
			"Is there a case ID or order number I need to enter on this website?",
			"Can you share your email ID so I can write to you if the link doesn't work?",
			"What is the full website address? And what is the customer support number on it?",
		},
	},
	domain.StateStall: {
		Goal:   "Get callback phone numbers, supervisor names, and case reference numbers",
		Budget: 4,
		Priorities: []domain.Category{
			domain.CategoryPhones, domain.CategoryNames,
		},
		Templates: []string{
			"Let me check with someone first. What number can I call you back on?",
			"What is your supervisor's name? Can I speak to them?",
			"Can you give me the official customer care phone number to verify?",
			"Can you email me the details? What is your official email address?",
			"I need to think about this. What is the case reference number again?",
			"What is your direct phone number? I will call you back in 10 minutes.",
			"My son wants to verify. Can you give me your full name and a callback number?",
			"What is the toll-free number for {entity}? I want to confirm.",
			"Can you share the complaint number or ticket ID so I can track this?",
			"What is your supervisor's name and direct number? I want to verify with them.",
		},
	},
	domain.StateConfirmDetails: {
		Goal:   "Extract the details not provided yet: email, case ID, policy number, order number",
		Budget: 4,
		Priorities: []domain.Category{
			domain.CategoryEmails, domain.CategoryCaseIDs,
			domain.CategoryPolicyNumbers, domain.CategoryOrderNumbers,
		},
		Templates: []string{
			"Okay I have the payment details. But what is the case reference number for this?",
			"Before I send the money, can you give me your official email address for my records?",
			"What is the policy number or order number linked to this transaction?",
			"I want to keep a record. What is the complaint ID or ticket number?",
			"Also, what email will the receipt come from after I pay?",
			"What is the official tracking number or order ID for this?",
			"I need to file this with my bank. What is the FIR or case number?",
			"Can you give me the customer care email address along with this?",
			"My son is asking for the insurance or policy number. What is it?",
			"What is the official reference ID I should keep for this entire process?",
		},
	},
	domain.StateEscalateExtraction: {
		Goal:   "Get phone numbers, supervisor names, email addresses, and remaining reference numbers",
		Budget: 6,
		Priorities: []domain.Category{
			domain.CategoryPhones, domain.CategoryNames, domain.CategoryEmails,
			domain.CategoryCaseIDs, domain.CategoryOrderNumbers,
		},
		Templates: []string{
			"I want to speak to your supervisor. What is their name and phone number?",
			"What is the main helpline phone number I can call?",
			"My son is asking for your full name and email address. Can you provide?",
			"What is the official customer care number for {entity}?",
			"Can you give me your manager's name and direct phone number?",
			"What is the FIR number or police complaint number for this case?",
			"I need your full name, phone number, and email for my records.",
			"What is the policy number or order number related to my case?",
			"Can you give me an alternate phone number to reach your department?",
			"What is the tracking number or order ID I should use to check status?",
		},
	},
	domain.StateClose: {
		Goal:   "Get a final phone number, name, email, and case reference before ending",
		Budget: 2,
		Priorities: []domain.Category{
			domain.CategoryPhones, domain.CategoryNames,
			domain.CategoryEmails, domain.CategoryCaseIDs,
		},
		Templates: []string{
			"Before I go, what phone number should I call if I have a problem?",
			"What is a good email address to reach you at if I need help later?",
			"Can you email me a confirmation? What is your email address?",
			"What reference number or case ID should I quote if I call back?",
			"One last thing, what is the confirmation number I will receive?",
			"What is the official complaint number I should keep for this?",
			"If there is an issue, what email should I write to?",
			"What is the customer care number for follow-up on this?",
			"What is the order number or policy number for my records?",
			"Alright. What is the toll-free number and the case ID I should keep?",
		},
	},
}

// Config returns the configuration for a state.
func Config(s domain.State) StateConfig {
	return stateConfigs[s]
}

// templateKeywords marks which canned questions probe which category,
// so the fallback picker can aim templates at the current target.
var templateKeywords = map[domain.Category][]string{
	domain.CategoryNames:          {"name", "full name", "supervisor", "manager", "officer", "beneficiary name", "account holder"},
	domain.CategoryPhones:         {"phone", "number", "call back", "callback", "helpline", "landline", "toll-free", "direct number"},
	domain.CategoryPaymentHandles: {"upi", "upi id"},
	domain.CategoryBankAccounts:   {"account number", "bank account", "ifsc", "branch"},
	domain.CategoryBranchCodes:    {"ifsc", "branch"},
	domain.CategoryEmails:         {"email", "email address", "email id"},
	domain.CategoryLinks:          {"link", "url", "website"},
	domain.CategoryCaseIDs:        {"case", "reference", "fir", "complaint", "ticket", "case id"},
	domain.CategoryPolicyNumbers:  {"policy", "insurance"},
	domain.CategoryOrderNumbers:   {"order", "tracking", "awb"},
}
