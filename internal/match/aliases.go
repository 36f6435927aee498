package match

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// defaultAliases is the compiled-in alias table: canonical artist key mapped
// to known Hebrew spellings, English spellings and common misspellings. The
// canonical key itself always counts as a variant during lookups.
var defaultAliases = map[string][]string{
	"omer adam":        {"עומר אדם", "omer adam", "omer adom"},
	"eyal golan":       {"אייל גולן", "eyal golan"},
	"noa kirel":        {"נועה קירל", "noa kirel", "noa kirell"},
	"static and ben el": {"סטטיק ובן אל", "static and ben el", "static & ben el", "static ben el"},
	"sarit hadad":      {"שרית חדד", "sarit hadad"},
	"shlomo artzi":     {"שלמה ארצי", "shlomo artzi", "shlomo arzi"},
	"idan raichel":     {"עידן רייכל", "idan raichel", "idan reichel"},
	"hanan ben ari":    {"חנן בן ארי", "hanan ben ari", "chanan ben ari"},
	"eden ben zaken":   {"עדן בן זקן", "eden ben zaken"},
	"ishay ribo":       {"ישי ריבו", "ishay ribo", "yishai ribo"},
	"omer adam band":   {"להקת עומר אדם"},
	"ivri lider":       {"עברי לידר", "ivri lider"},
	"netta barzilai":   {"נטע ברזילי", "netta", "netta barzilai"},
	"berry sakharof":   {"ברי סחרוף", "berry sakharof", "beri saharof"},
	"rita":             {"ריטה", "rita"},
}

// AliasSource loads the supplementary alias table from external storage.
// Implementations are expected to be backed by the artist_aliases table.
type AliasSource interface {
	LoadAliases(ctx context.Context) (map[string][]string, error)
}

// AliasSourceFunc adapts a function to the AliasSource interface.
type AliasSourceFunc func(ctx context.Context) (map[string][]string, error)

// LoadAliases implements AliasSource.
func (f AliasSourceFunc) LoadAliases(ctx context.Context) (map[string][]string, error) {
	return f(ctx)
}

// AliasTable merges the compiled-in alias table with a supplementary table
// loaded lazily from an AliasSource. For any canonical key defined in both,
// the supplementary entry wins, matching admin-override behavior.
//
// The external table is loaded at most once per process through a
// single-flight guard: concurrent callers during a pending load all await the
// same in-flight load, and later callers hit the cache. A failed load degrades
// to the compiled-in defaults and is retried on the next lookup.
type AliasTable struct {
	source AliasSource

	mu       sync.RWMutex
	loaded   bool
	external map[string][]string
	added    map[string][]string // in-memory AddAlias additions

	group singleflight.Group
}

// NewAliasTable creates an AliasTable. source may be nil, in which case only
// the compiled-in table (plus any runtime additions) is consulted.
func NewAliasTable(source AliasSource) *AliasTable {
	return &AliasTable{
		source: source,
		added:  make(map[string][]string),
	}
}

// ensureLoaded loads the supplementary table on first use. Load failures are
// swallowed: lookups proceed with compiled-in defaults only.
func (t *AliasTable) ensureLoaded(ctx context.Context) {
	if t.source == nil {
		return
	}

	t.mu.RLock()
	loaded := t.loaded
	t.mu.RUnlock()
	if loaded {
		return
	}

	_, _, _ = t.group.Do("load", func() (interface{}, error) {
		ext, err := t.source.LoadAliases(ctx)
		if err != nil {
			return nil, nil // degrade to defaults, retry next call
		}
		t.mu.Lock()
		t.external = ext
		t.loaded = true
		t.mu.Unlock()
		return nil, nil
	})
}

// Reload marks the supplementary table stale so the next lookup fetches it
// again from the source. Runtime additions made through Add are preserved.
func (t *AliasTable) Reload() {
	t.mu.Lock()
	t.loaded = false
	t.mu.Unlock()
}

// VariantSets returns every alias entry as a normalized variant set keyed by
// canonical name. Each set includes the canonical key itself. Supplementary
// entries shadow compiled-in entries; runtime additions extend both.
func (t *AliasTable) VariantSets(ctx context.Context) map[string]map[string]struct{} {
	t.ensureLoaded(ctx)

	t.mu.RLock()
	defer t.mu.RUnlock()

	sets := make(map[string]map[string]struct{}, len(defaultAliases)+len(t.external))

	put := func(canonical string, variants []string) {
		key := Normalize(canonical)
		if key == "" {
			return
		}
		set := make(map[string]struct{}, len(variants)+1)
		set[key] = struct{}{}
		for _, v := range variants {
			if n := Normalize(v); n != "" {
				set[n] = struct{}{}
			}
		}
		sets[key] = set
	}

	for canonical, variants := range defaultAliases {
		put(canonical, variants)
	}
	// Externally-loaded table is authoritative for any key it also defines.
	for canonical, variants := range t.external {
		put(canonical, variants)
	}
	for canonical, variants := range t.added {
		key := Normalize(canonical)
		set, ok := sets[key]
		if !ok {
			set = map[string]struct{}{key: {}}
			sets[key] = set
		}
		for _, v := range variants {
			if n := Normalize(v); n != "" {
				set[n] = struct{}{}
			}
		}
	}

	return sets
}

// Add idempotently records alias as a variant of canonical, creating the entry
// if needed. The change is in-memory only; persisting it externally is the
// caller's responsibility.
func (t *AliasTable) Add(canonical, alias string) {
	key := Normalize(canonical)
	variant := Normalize(alias)
	if key == "" || variant == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, existing := range t.added[key] {
		if existing == variant {
			return
		}
	}
	t.added[key] = append(t.added[key], variant)
}
