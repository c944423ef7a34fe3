package intent

// KeywordConfig is the single canonical rule table for the keyword pass.
// Earlier pipeline iterations carried several near-duplicate keyword sets;
// this structure is the one source of truth, versioned so deployments can
// tell which table produced a classification.
//
// Category order is fixed: ADD, then SALE, then CHECK. When an utterance
// contains keywords from more than one category the first category in that
// order wins — ties are never broken by map iteration or any other
// non-deterministic mechanism.
type KeywordConfig struct {
	// Version identifies the table revision.
	Version int

	// Add matches stock-addition commands ("thap 5 kg chamal").
	Add []string

	// Sale matches stock-deduction commands ("dui kilo chini bech").
	Sale []string

	// Check matches stock-inquiry commands ("chamal kati chha").
	Check []string

	// Status are high-signal stock-inquiry words used to bias the
	// statistical classifier's CHECK score. They are deliberately a
	// separate, smaller set than Check: the boost corrects a known model
	// confusion between status queries and sales, and widening it would
	// drag ADD/SALE utterances toward CHECK.
	Status []string
}

// DefaultKeywords returns the built-in rule table. Keywords cover romanized
// Nepali, Devanagari, and the English loanwords shopkeepers mix in.
//
// Three deliberate omissions from older tables:
//   - "aayo" (ADD) — it is also the salt brand "Aayo Nun"; keeping it as an
//     intent keyword misclassified every mention of the brand.
//   - bare "kat" (SALE) — containment matching fires on "kati" (CHECK).
//   - bare "kin" (ADD) — containment matching fires on "sakin" (CHECK).
func DefaultKeywords() KeywordConfig {
	return KeywordConfig{
		Version: 3,
		Add: []string{
			"thap", "थप",
			"rakh", "राख",
			"kinera", "kineko", "किनेर",
			"lyau",
			"add",
		},
		Sale: []string{
			"bech", "बेच",
			"bikri",
			"ghatau", "ghata", "घटाऊ",
			"katau", "kata", "कटाऊ",
			"gayo",
			"deu", "दिनु",
			"sell", "sale", "sold", "deduct",
		},
		Check: []string{
			"kati", "कति",
			"baki", "बाँकी",
			"sakin",
			"her",
			"check", "stock", "left", "how much", "remaining",
		},
		Status: []string{
			"kati", "कति",
			"baki", "बाँकी",
			"stock",
		},
	}
}
