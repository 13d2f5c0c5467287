package cache

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCache_BoundProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("size never exceeds max and the least recently accessed keys go first", prop.ForAll(
		func(maxSize, extra, touched int) bool {
			c := New(Options{MaxSize: maxSize, MaxAge: time.Hour})

			// Fill to capacity, then read the first `touched` keys so they
			// become the most recently accessed ones.
			order := make([]string, 0, maxSize+extra)
			for i := 0; i < maxSize; i++ {
				key := fmt.Sprintf("k%d", i)
				c.Set(key, "v", 1)
				order = append(order, key)
			}
			if touched > maxSize {
				touched = maxSize
			}
			for i := 0; i < touched; i++ {
				key := fmt.Sprintf("k%d", i)
				c.Get(key, 1)
				order = slices.DeleteFunc(order, func(k string) bool { return k == key })
				order = append(order, key)
			}

			for i := 0; i < extra; i++ {
				key := fmt.Sprintf("n%d", i)
				c.Set(key, "v", 1)
				order = append(order, key)
				if c.Len() > maxSize {
					return false
				}
			}

			k := len(order) - maxSize
			if k < 0 {
				k = 0
			}
			for _, evicted := range order[:k] {
				if _, ok := c.Peek(evicted); ok {
					return false
				}
			}
			for _, kept := range order[k:] {
				if _, ok := c.Peek(kept); !ok {
					return false
				}
			}
			return c.Stats().Evictions == int64(k)
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 30),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
