package websearch

import (
	"errors"
	"testing"
)

func TestNewWebSearcher(t *testing.T) {
	for _, provider := range []Provider{WikipediaProvider, DuckDuckGoProvider} {
		s, err := NewWebSearcher(provider, "", nil)
		if err != nil {
			t.Fatalf("NewWebSearcher(%s): %v", provider, err)
		}
		if s == nil {
			t.Fatalf("NewWebSearcher(%s) returned nil searcher", provider)
		}
	}
}

func TestNewWebSearcherUnsupported(t *testing.T) {
	if _, err := NewWebSearcher("bing", "", nil); !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}
