package extractor

// Fragment is the intelligence pulled out of a single message. It is merged
// into a conversation's Intelligence and then discarded.
type Fragment struct {
	UPIIDs       []string
	PhishingURLs []string
	BankAccounts []string
}

// Empty reports whether the fragment carries no values at all.
func (f Fragment) Empty() bool {
	return len(f.UPIIDs) == 0 && len(f.PhishingURLs) == 0 && len(f.BankAccounts) == 0
}

// Count is the total number of values across all categories.
func (f Fragment) Count() int {
	return len(f.UPIIDs) + len(f.PhishingURLs) + len(f.BankAccounts)
}

// Intelligence is the running dossier for a conversation. Each sequence is
// append-only: values keep discovery order and duplicates are retained.
type Intelligence struct {
	UPIIDs       []string `json:"upi_ids"`
	PhishingURLs []string `json:"phishing_urls"`
	BankAccounts []string `json:"bank_accounts"`
}

// NewIntelligence returns a dossier with three empty, non-nil sequences so
// that it always encodes as JSON arrays.
func NewIntelligence() Intelligence {
	return Intelligence{
		UPIIDs:       []string{},
		PhishingURLs: []string{},
		BankAccounts: []string{},
	}
}

// Merge appends every value of f to the matching sequence, in order.
func (in *Intelligence) Merge(f Fragment) {
	in.UPIIDs = append(in.UPIIDs, f.UPIIDs...)
	in.PhishingURLs = append(in.PhishingURLs, f.PhishingURLs...)
	in.BankAccounts = append(in.BankAccounts, f.BankAccounts...)
}

// Clone returns a deep copy that shares no backing arrays with in.
func (in Intelligence) Clone() Intelligence {
	return Intelligence{
		UPIIDs:       cloneStrings(in.UPIIDs),
		PhishingURLs: cloneStrings(in.PhishingURLs),
		BankAccounts: cloneStrings(in.BankAccounts),
	}
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
