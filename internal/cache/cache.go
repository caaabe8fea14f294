// Package cache implements a content-hash keyed store of already-extracted
// FileSymbols, so internal/project.Analyzer can skip re-parsing a file whose
// content it has seen before. Grounded on the teacher's utils.HashBytes
// content-hash pattern (internal/core/indexer.go's file.Hash field) and
// backed by github.com/dgraph-io/badger/v4 for speed: a cache miss is never
// an error, it just means the caller re-extracts.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/aaamil13/symgraph/internal/symbols"
)

// Cache wraps a Badger KV store mapping a file's content hash to its
// previously extracted FileSymbols.
type Cache struct {
	db *badger.DB
}

// Options configures where the cache persists its data.
type Options struct {
	// Dir is the on-disk directory Badger uses. Ignored when InMemory is set.
	Dir string
	// InMemory runs Badger without touching disk, for tests and ephemeral
	// one-shot analyses.
	InMemory bool
}

// Open creates or reopens a Cache at opts.Dir (or a pure in-memory instance).
func Open(opts Options) (*Cache, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir).WithLogger(nil)
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithLogger(nil).WithInMemory(true)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying Badger store.
func (c *Cache) Close() error {
	return c.db.Close()
}

// ContentHash computes the cache key for a file's raw content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Get returns the FileSymbols cached under hash, rekeyed to fileKey. Two
// files with identical content hash to the same entry but may carry
// different file keys (e.g. two empty files), so the stored dependency ids
// that referenced the original file's own symbols are rewritten onto
// fileKey; ids referencing other files pass through unchanged. A missing key
// is reported as (nil, false, nil), never an error.
func (c *Cache) Get(hash, fileKey string) (*symbols.FileSymbols, bool, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	if raw == nil {
		return nil, false, nil
	}

	var entry cachedFile
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, err
	}
	return entry.toFileSymbols(fileKey), true, nil
}

// Put stores fs under hash, overwriting any prior entry.
func (c *Cache) Put(hash string, fs *symbols.FileSymbols) error {
	raw, err := json.Marshal(newCachedFile(fs))
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(hash), raw)
	})
}

// cachedSymbol is the wire shape of a symbols.Symbol: enough to reconstruct
// one without the original typed-tree node, which a cache hit never has.
type cachedSymbol struct {
	Name          string                 `json:"name"`
	Kind          symbols.Kind           `json:"kind"`
	DeclKind      string                 `json:"declKind,omitempty"`
	TypeText      string                 `json:"typeText,omitempty"`
	IsExported    bool                   `json:"isExported"`
	Documentation string                 `json:"documentation,omitempty"`
	Location      symbols.SourceLocation `json:"location"`
	Dependencies  []string               `json:"dependencies,omitempty"`
}

type cachedImport struct {
	LocalName    string              `json:"localName"`
	FromModule   string              `json:"fromModule"`
	Normalized   string              `json:"normalized"`
	Style        symbols.ImportStyle `json:"style"`
	OriginalName string              `json:"originalName"`
}

type cachedFile struct {
	FileKey  string         `json:"fileKey"`
	Exports  []cachedSymbol `json:"exports"`
	Internal []cachedSymbol `json:"internal"`
	Imports  []cachedImport `json:"imports"`
}

// cachedDeclRef reconstructs just enough of symbols.DeclRef for
// Symbol.EffectiveKind() to work after a cache round-trip; nothing else in
// this codebase inspects DeclRef once dependency discovery has already run.
type cachedDeclRef string

func (c cachedDeclRef) DeclKind() string { return string(c) }

func newCachedFile(fs *symbols.FileSymbols) cachedFile {
	entry := cachedFile{FileKey: fs.FileKey}
	for _, sym := range fs.Exports() {
		entry.Exports = append(entry.Exports, toCachedSymbol(sym))
	}
	for _, sym := range fs.Internal() {
		entry.Internal = append(entry.Internal, toCachedSymbol(sym))
	}
	for _, imp := range fs.Imports() {
		entry.Imports = append(entry.Imports, cachedImport{
			LocalName:    imp.LocalName,
			FromModule:   imp.FromModule,
			Normalized:   imp.Normalized,
			Style:        imp.Style,
			OriginalName: imp.OriginalName,
		})
	}
	return entry
}

func toCachedSymbol(sym *symbols.Symbol) cachedSymbol {
	declKind := ""
	if sym.DeclarationRef != nil {
		declKind = sym.DeclarationRef.DeclKind()
	}
	deps := make([]string, 0, len(sym.Dependencies))
	for dep := range sym.Dependencies {
		deps = append(deps, dep)
	}
	return cachedSymbol{
		Name:          sym.Name,
		Kind:          sym.Kind,
		DeclKind:      declKind,
		TypeText:      sym.TypeText,
		IsExported:    sym.IsExported,
		Documentation: sym.Documentation,
		Location:      sym.Location,
		Dependencies:  deps,
	}
}

func (c cachedFile) toFileSymbols(fileKey string) *symbols.FileSymbols {
	fs := symbols.NewFileSymbols(fileKey)
	for _, cs := range c.Exports {
		fs.AddExport(cs.toSymbol(fileKey, c.FileKey))
	}
	for _, cs := range c.Internal {
		fs.AddInternal(cs.toSymbol(fileKey, c.FileKey))
	}
	for _, ci := range c.Imports {
		fs.AddImport(&symbols.Import{
			LocalName:    ci.LocalName,
			FromModule:   ci.FromModule,
			Normalized:   ci.Normalized,
			Style:        ci.Style,
			OriginalName: ci.OriginalName,
		})
	}
	return fs
}

// toSymbol rebuilds one symbol under fileKey, rewriting any dependency id
// that referenced the entry's original file (originalFileKey) onto fileKey;
// ids naming other files are cross-file references and stay as written.
func (cs cachedSymbol) toSymbol(fileKey, originalFileKey string) *symbols.Symbol {
	sym := symbols.NewSymbol(fileKey, cs.Name, cs.Kind)
	sym.TypeText = cs.TypeText
	sym.IsExported = cs.IsExported
	sym.Documentation = cs.Documentation
	sym.Location = cs.Location
	if cs.DeclKind != "" {
		sym.DeclarationRef = cachedDeclRef(cs.DeclKind)
	}
	prefix := originalFileKey + ":"
	for _, dep := range cs.Dependencies {
		if rest, ok := strings.CutPrefix(dep, prefix); ok {
			sym.AddDependency(fileKey + ":" + rest)
		} else {
			sym.AddDependency(dep)
		}
	}
	return sym
}
