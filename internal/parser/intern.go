package parser

import "strings"

// MaxInternPoolSize bounds the intern pool. Past this many distinct names the
// interner returns its input unchanged.
const MaxInternPoolSize = 4096

// StringIntern deduplicates interface names so that every sample referencing
// "eth0" shares one string. A log holds a handful of distinct names repeated
// on every line. Not safe for concurrent use; ingestion is single-threaded.
type StringIntern struct {
	pool map[string]string
}

// NewStringIntern creates a new string interner.
func NewStringIntern() *StringIntern {
	return &StringIntern{pool: make(map[string]string, 16)}
}

// Intern returns the canonical copy of s.
func (si *StringIntern) Intern(s string) string {
	if pooled, ok := si.pool[s]; ok {
		return pooled
	}
	if len(si.pool) >= MaxInternPoolSize {
		return s
	}
	// Clone so the pooled name does not pin the whole log line in memory.
	c := strings.Clone(s)
	si.pool[c] = c
	return c
}

// Len returns the number of unique strings in the pool.
func (si *StringIntern) Len() int {
	return len(si.pool)
}
