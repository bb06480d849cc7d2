package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/johanventer/jsonata-go/pkg/parser"
	"github.com/johanventer/jsonata-go/pkg/types"
)

func TestCacheGetPut(t *testing.T) {
	c := New(2)

	expr, err := parser.Compile("a.b")
	if err != nil {
		t.Fatal(err)
	}
	c.Put("a.b", expr)

	got, ok := c.Get("a.b")
	if !ok || got != expr {
		t.Fatal("expected to get back the cached expression")
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected a miss for an unknown key")
	}
}

func TestCacheEviction(t *testing.T) {
	c := New(2)
	for _, src := range []string{"a", "b", "c"} {
		expr, err := parser.Compile(src)
		if err != nil {
			t.Fatal(err)
		}
		c.Put(src, expr)
	}

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries after eviction, got %d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected the least recently used entry to be evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected the most recent entry to survive")
	}
}

func TestGetOrCompile(t *testing.T) {
	c := New(8)
	compiles := 0
	compile := func(src string) (*types.Expression, error) {
		compiles++
		return parser.Compile(src)
	}

	for i := 0; i < 3; i++ {
		if _, err := c.GetOrCompile("a.b.c", compile); err != nil {
			t.Fatal(err)
		}
	}
	if compiles != 1 {
		t.Errorf("expected a single compilation, got %d", compiles)
	}

	// errors are not cached
	for i := 0; i < 2; i++ {
		if _, err := c.GetOrCompile("1 +", compile); err == nil {
			t.Fatal("expected a compile error")
		}
	}
	if c.Len() != 1 {
		t.Errorf("expected failed compilations to stay out of the cache, got %d entries", c.Len())
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New(16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				src := fmt.Sprintf("a + %d", j%20)
				if _, err := c.GetOrCompile(src, parser.Compile); err != nil {
					t.Error(err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
