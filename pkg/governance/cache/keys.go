package cache

import (
	"fmt"
	"path"
)

// composeKey builds the physical key for a raw key in a namespace under
// the given version. The layout is the cache's one structural invariant:
// every physical key is version:namespace:rawKey.
func composeKey(version uint64, namespace, rawKey string) string {
	return fmt.Sprintf("%d:%s:%s", version, namespace, rawKey)
}

// versionPrefix is the scan prefix covering every key of one version.
func versionPrefix(version uint64) string {
	return fmt.Sprintf("%d:", version)
}

// namespacePrefix is the scan prefix covering one namespace of one version.
func namespacePrefix(version uint64, namespace string) string {
	return fmt.Sprintf("%d:%s:", version, namespace)
}

// matchGlob reports whether the composed key matches the glob pattern.
// Patterns use path.Match syntax ('*', '?', character classes); keys
// contain no '/' so '*' effectively matches any run of characters.
// A malformed pattern matches nothing.
func matchGlob(pattern, key string) bool {
	ok, err := path.Match(pattern, key)
	return err == nil && ok
}
