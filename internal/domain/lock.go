package domain

import "sort"

// LockSpecVersion is the hashlock file format version.
const LockSpecVersion = "1"

// HashlockEntry pins one governed object's expected identity. Entries are
// uniquely keyed by URN; a legitimate content change produces a different
// URN because the URN embeds the content hash.
type HashlockEntry struct {
	APIVersion    string `json:"apiVersion"`
	Kind          string `json:"kind"`
	Namespace     string `json:"namespace"`
	Name          string `json:"name"`
	Platform      string `json:"platform"`
	Component     string `json:"component"`
	URI           string `json:"uri"`
	URN           string `json:"urn"`
	ContentSHA256 string `json:"contentSha256"`
	Source        string `json:"source"`
}

// HashlockFile is the committed ledger of expected identities. It is
// regenerated wholesale on every update run and read-only input on verify.
type HashlockFile struct {
	SpecVersion   string          `json:"specVersion"`
	GeneratedAt   string          `json:"generatedAt"`
	HashAlgorithm string          `json:"hashAlgorithm"`
	Entries       []HashlockEntry `json:"entries"`
}

// SortEntries orders entries by (source, kind, namespace, name) so the
// serialized ledger diffs stably.
func SortEntries(entries []HashlockEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.Name < b.Name
	})
}

// ByURN indexes entries by URN, mapping to their content hash. When two
// entries share a URN the later one in slice order wins; duplicate handling
// is the caller's concern via the duplicate-URN policy.
func ByURN(entries []HashlockEntry) map[string]string {
	index := make(map[string]string, len(entries))
	for _, e := range entries {
		index[e.URN] = e.ContentSHA256
	}
	return index
}
