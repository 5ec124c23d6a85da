package rewrite

import "fmt"

// cacheKeyName is the module global holding this rewrite's cache key
// (the Quil program's own text, reused as the key so identical
// programs across invocations hit the same cache entry).
func cacheKeyName(idx uint64) string {
	return fmt.Sprintf("__qir2quil.cachekey.%d", idx)
}
