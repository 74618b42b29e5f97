package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickByTitle(t *testing.T) {
	names := []string{"One Piece Film Red", "One Piece", "Two Piece"}

	assert.Equal(t, 1, pickByTitle("one piece", names), "exact normalized match wins")
	assert.Equal(t, 0, pickByTitle("One Piece Film", names), "containment falls back")
	assert.Equal(t, 0, pickByTitle("unrelated", names), "first candidate as last resort")
	assert.Equal(t, -1, pickByTitle("anything", nil))
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 107, parseCount("107"))
	assert.Equal(t, 107, parseCount(" 107.5 "))
	assert.Equal(t, 0, parseCount(""))
	assert.Equal(t, 0, parseCount("n/a"))
}

func TestVolumesOrDerived(t *testing.T) {
	assert.Equal(t, 14, volumesOrDerived(14, 3, 120), "authoritative field wins")
	assert.Equal(t, 12, volumesOrDerived(0, 3, 120), "chapter guess beats small derived")
	assert.Equal(t, 9, volumesOrDerived(0, 9, 50), "derived beats small guess")
}

func TestMangaDexFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manga", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"id":"aaa","attributes":{"title":{"en":"One Piece Film Red"},"lastChapter":"","lastVolume":""}},
			{"id":"bbb","attributes":{"title":{"en":"One Piece"},"lastChapter":"1100","lastVolume":"107"}}
		]}`))
	})
	mux.HandleFunc("/manga/bbb/aggregate", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"volumes":{
			"1":{"volume":"1","count":9,"chapters":{}},
			"2":{"volume":"2","count":0,"chapters":{"10":{"chapter":"10"},"11":{"chapter":"11"}}},
			"none":{"volume":"none","count":3,"chapters":{}}
		}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewMangaDex()
	s.BaseURL = srv.URL

	got := s.Fetch(context.Background(), "One Piece")
	assert.Equal(t, 1100, got.Chapters, "authoritative lastChapter beats itemized count")
	assert.Equal(t, 107, got.Volumes)
}

func TestMangaDexDerivedCounts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manga", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"c","attributes":{"title":{"en":"Short Run"},"lastChapter":"","lastVolume":""}}]}`))
	})
	mux.HandleFunc("/manga/c/aggregate", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"volumes":{"1":{"volume":"1","count":8,"chapters":{}},"2":{"volume":"2","count":9,"chapters":{}}}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewMangaDex()
	s.BaseURL = srv.URL

	got := s.Fetch(context.Background(), "Short Run")
	assert.Equal(t, 17, got.Chapters, "itemized counts when no authoritative field")
	assert.Equal(t, 2, got.Volumes, "derived volumes beat the chapter guess")
}

func TestMangaDexFailureIsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewMangaDex()
	s.BaseURL = srv.URL
	assert.True(t, s.Fetch(context.Background(), "anything").IsZero())

	// unreachable host
	s.BaseURL = "http://127.0.0.1:1"
	assert.True(t, s.Fetch(context.Background(), "anything").IsZero())
}

func TestTrackerMoeFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manga", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Client-ID"))
		w.Write([]byte(`{"data":[{"node":{"id":42,"title":"Berserk"}}]}`))
	})
	mux.HandleFunc("/manga/42", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":42,"title":"Berserk","num_chapters":364,"num_volumes":41,"status":"ongoing"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewTrackerMoe("secret")
	s.BaseURL = srv.URL

	got := s.Fetch(context.Background(), "Berserk")
	assert.Equal(t, Counts{Chapters: 364, Volumes: 41}, got)
}

func TestTrackerMoeMissingVolumesFallsBack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manga", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"node":{"id":7,"title":"Oneshot Deluxe"}}]}`))
	})
	mux.HandleFunc("/manga/7", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":7,"num_chapters":55,"num_volumes":0}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewTrackerMoe("")
	s.BaseURL = srv.URL

	got := s.Fetch(context.Background(), "Oneshot Deluxe")
	assert.Equal(t, 55, got.Chapters)
	assert.Equal(t, 5, got.Volumes, "derived from chapters when num_volumes is zero")
}

func TestTrackerMoeNotFoundIsZero(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manga", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewTrackerMoe("")
	s.BaseURL = srv.URL
	assert.True(t, s.Fetch(context.Background(), "nothing here").IsZero())
}

func TestKitsuInFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<a class="series-link" href="/series/vinland-saga">Vinland Saga</a>
			<a class="series-link" href="/series/vinland-saga-spinoff">Vinland Saga Spinoff</a>
		</body></html>`))
	})
	mux.HandleFunc("/series/vinland-saga", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<div class="series-stats">212 Chapters · 27 Volumes · Ongoing</div>
		</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewKitsuIn()
	s.BaseURL = srv.URL

	got := s.Fetch(context.Background(), "Vinland Saga")
	assert.Equal(t, Counts{Chapters: 212, Volumes: 27}, got)
}

func TestKitsuInScansWholePageWithoutStatsBlock(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a class="series-link" href="/series/x">X</a>`))
	})
	mux.HandleFunc("/series/x", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>This series ran for 90 chapters in total.</p>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewKitsuIn()
	s.BaseURL = srv.URL

	got := s.Fetch(context.Background(), "X")
	assert.Equal(t, 90, got.Chapters)
	assert.Equal(t, 9, got.Volumes, "volume guess from chapters")
}

func TestKitsuInFailureIsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewKitsuIn()
	s.BaseURL = srv.URL
	assert.True(t, s.Fetch(context.Background(), "anything").IsZero())
}
