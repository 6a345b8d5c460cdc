package versions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{
		http:              &http.Client{Timeout: 2 * time.Second},
		mojangManifestURL: srv.URL + "/manifest",
		paperProjectURL:   srv.URL + "/paper",
	}
}

func TestListVanillaFiltersReleases(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"versions":[
			{"id":"24w14a","type":"snapshot"},
			{"id":"1.20.5","type":"release"},
			{"id":"1.20.4","type":"release"}
		]}`))
	})

	got, err := c.List(context.Background(), "vanilla")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0] != "1.20.5" || got[1] != "1.20.4" {
		t.Errorf("versions = %v", got)
	}
}

func TestListPaperReversesOrder(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"versions":["1.19.4","1.20.2","1.20.4"]}`))
	})

	got, err := c.List(context.Background(), "paper")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 || got[0] != "1.20.4" || got[2] != "1.19.4" {
		t.Errorf("versions = %v", got)
	}
}

func TestListFabricSharesMojangCatalog(t *testing.T) {
	var hits int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/manifest" {
			t.Errorf("fabric hit %s, want the mojang manifest", r.URL.Path)
		}
		w.Write([]byte(`{"versions":[{"id":"1.20.4","type":"release"}]}`))
	})

	if _, err := c.List(context.Background(), "fabric"); err != nil {
		t.Fatalf("List: %v", err)
	}
	if hits != 1 {
		t.Errorf("hits = %d", hits)
	}
}

func TestListUnknownType(t *testing.T) {
	c := NewClient()
	if _, err := c.List(context.Background(), "bedrock"); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestListUpstreamError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	if _, err := c.List(context.Background(), "vanilla"); err == nil {
		t.Error("upstream failure not surfaced")
	}
}
