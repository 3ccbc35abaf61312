package cache

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Params are the named values a cache key is derived from.
// Nil values are left out of the key.
type Params map[string]any

// Key encodes params as "<prefix>:name:value|name:value" with names sorted,
// so the same params always produce the same key regardless of map order.
func Key(prefix string, params Params) string {
	return prefix + ":" + strings.Join(fragments(params), "|")
}

func fragments(params Params) []string {
	set := lo.OmitBy(map[string]any(params), func(_ string, value any) bool { return value == nil })
	names := lo.Keys(set)
	slices.Sort(names)
	return lo.Map(names, func(name string, _ int) string {
		return fmt.Sprintf("%s:%v", name, set[name])
	})
}
