package provider_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"wfp/font"
	"wfp/platform"
	"wfp/provider"
)

func newRemote(t *testing.T, fetch platform.Fetcher) (*provider.Remote, *platform.MemoryCache) {
	t.Helper()
	cache := platform.NewMemoryCache()
	p := provider.NewRemote(zap.NewNop(), provider.RemoteConfig{
		Name:    "google",
		BaseURL: "https://fonts.googleapis.com/css2",
	}, cache, fetch)
	return p, cache
}

func TestRemote_BuildURLs_SingleFamily(t *testing.T) {
	p, _ := newRemote(t, nil)

	urls := p.BuildURLs([]font.Descriptor{
		{"font-family": "Roboto", "provider": "google"},
	})

	if len(urls) != 1 {
		t.Fatalf("expected one URL, got %v", urls)
	}
	want := "https://fonts.googleapis.com/css2?family=Roboto:wght@400&display=fallback"
	if urls[0] != want {
		t.Errorf("url = %q, want %q", urls[0], want)
	}
}

func TestRemote_BuildURLs_ItalicAndNormal(t *testing.T) {
	p, _ := newRemote(t, nil)

	urls := p.BuildURLs([]font.Descriptor{
		{"font-family": "Roboto", "font-weight": "400"},
		{"font-family": "Roboto", "font-style": "italic", "font-weight": "700"},
	})

	if len(urls) != 1 {
		t.Fatalf("expected one URL, got %v", urls)
	}
	if !strings.Contains(urls[0], "family=Roboto:ital,wght@0,400;1,700") {
		t.Errorf("url = %q, want ital,wght tuples", urls[0])
	}
}

func TestRemote_BuildURLs_ItalicOnly(t *testing.T) {
	p, _ := newRemote(t, nil)

	urls := p.BuildURLs([]font.Descriptor{
		{"font-family": "Lora", "font-style": "italic", "font-weight": "500"},
		{"font-family": "Lora", "font-style": "italic", "font-weight": "400"},
	})

	if !strings.Contains(urls[0], "family=Lora:ital,wght@1,400;1,500") {
		t.Errorf("url = %q, want sorted italic weights", urls[0])
	}
}

func TestRemote_BuildURLs_WeightForms(t *testing.T) {
	p, _ := newRemote(t, nil)

	urls := p.BuildURLs([]font.Descriptor{
		{"font-family": "Flex", "font-weight": "200 900"},
		{"font-family": "Mono", "font-weight": "bold"},
	})

	if len(urls) != 1 {
		t.Fatalf("expected one URL, got %v", urls)
	}
	if !strings.Contains(urls[0], "family=Flex:wght@200..900") {
		t.Errorf("url = %q, want range form 200..900", urls[0])
	}
	if !strings.Contains(urls[0], "family=Mono:wght@700") {
		t.Errorf("url = %q, want bold mapped to 700", urls[0])
	}
}

func TestRemote_BuildURLs_SplitByDisplay(t *testing.T) {
	p, _ := newRemote(t, nil)

	urls := p.BuildURLs([]font.Descriptor{
		{"font-family": "A", "font-display": "swap"},
		{"font-family": "B", "font-display": "block"},
		{"font-family": "C", "font-display": "swap"},
	})

	if len(urls) != 2 {
		t.Fatalf("expected one URL per display value, got %v", urls)
	}
	if !strings.Contains(urls[0], "family=A") || !strings.Contains(urls[0], "family=C") ||
		!strings.HasSuffix(urls[0], "display=swap") {
		t.Errorf("first url = %q, want A and C with display=swap", urls[0])
	}
	if !strings.Contains(urls[1], "family=B") || !strings.HasSuffix(urls[1], "display=block") {
		t.Errorf("second url = %q, want B with display=block", urls[1])
	}
}

func TestRemote_BuildURLs_FamilyEscaping(t *testing.T) {
	p, _ := newRemote(t, nil)

	urls := p.BuildURLs([]font.Descriptor{
		{"font-family": "Open Sans"},
	})

	if !strings.Contains(urls[0], "family=Open+Sans:") {
		t.Errorf("url = %q, want space escaped as +", urls[0])
	}
}

func TestRemote_BuildURLs_APIKey(t *testing.T) {
	p := provider.NewRemote(zap.NewNop(), provider.RemoteConfig{
		Name:    "google",
		BaseURL: "https://fonts.googleapis.com/css2",
		APIKey:  "AIzaSy/with+odd chars",
	}, platform.NewMemoryCache(), nil)

	urls := p.BuildURLs([]font.Descriptor{
		{"font-family": "Roboto"},
	})

	if len(urls) != 1 || !strings.HasSuffix(urls[0], "&key=AIzaSy%2Fwith%2Bodd+chars") {
		t.Errorf("url = %v, want escaped key parameter appended", urls)
	}
}

func TestRemote_BuildURLs_DeduplicatesVariants(t *testing.T) {
	p, _ := newRemote(t, nil)

	urls := p.BuildURLs([]font.Descriptor{
		{"font-family": "Roboto", "font-weight": "400"},
		{"font-family": "Roboto", "font-weight": "normal"},
	})

	if !strings.Contains(urls[0], "family=Roboto:wght@400&") {
		t.Errorf("url = %q, want single weight 400", urls[0])
	}
}

func TestRemote_FetchAndCache(t *testing.T) {
	calls := 0
	fetch := platform.FetcherFunc(func(_ context.Context, _ string) ([]byte, error) {
		calls++
		return []byte("@font-face{font-family:'Roboto'}"), nil
	})
	p, _ := newRemote(t, fetch)

	fonts := []font.Descriptor{{"font-family": "Roboto"}}
	ctx := context.Background()

	first := p.GetFontsCollectionCSS(ctx, fonts)
	second := p.GetFontsCollectionCSS(ctx, fonts)

	if first != "@font-face{font-family:'Roboto'}" || second != first {
		t.Errorf("unexpected CSS: %q / %q", first, second)
	}
	if calls != 1 {
		t.Errorf("expected a single upstream fetch, got %d", calls)
	}
}

func TestRemote_NegativeCacheOnFailure(t *testing.T) {
	calls := 0
	fetch := platform.FetcherFunc(func(_ context.Context, _ string) ([]byte, error) {
		calls++
		return nil, errors.New("upstream down")
	})
	p, _ := newRemote(t, fetch)

	fonts := []font.Descriptor{{"font-family": "Roboto"}}
	ctx := context.Background()

	if css := p.GetFontsCollectionCSS(ctx, fonts); css != "" {
		t.Errorf("failed fetch must degrade to empty CSS, got %q", css)
	}
	if css := p.GetFontsCollectionCSS(ctx, fonts); css != "" {
		t.Errorf("negative cache must serve empty CSS, got %q", css)
	}
	if calls != 1 {
		t.Errorf("failure must be negative-cached, got %d fetches", calls)
	}
}

func TestSet_RegistrationOrder(t *testing.T) {
	local := provider.NewLocal(zap.NewNop())
	remote, _ := newRemote(t, nil)

	s := provider.NewSet(zap.NewNop(), local, remote)

	if got := s.Names(); len(got) != 2 || got[0] != "local" || got[1] != "google" {
		t.Errorf("Names() = %v, want [local google]", got)
	}
	if _, ok := s.Get("google"); !ok {
		t.Error("Get(google) not found")
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) unexpectedly found")
	}
}
