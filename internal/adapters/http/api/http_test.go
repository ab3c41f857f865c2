package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	api "github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDeps implements api.Dependencies with canned data.
type mockDeps struct {
	entries []api.Entry
	hits    []api.Hit
	rank    int
	err     error

	gotLimit  int
	gotOffset int
	gotPrefix string
	gotRating int
}

func (m *mockDeps) Leaderboard(_ context.Context, limit, offset int) ([]api.Entry, error) {
	m.gotLimit = limit
	m.gotOffset = offset
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func (m *mockDeps) Search(_ context.Context, prefix string) ([]api.Hit, error) {
	m.gotPrefix = prefix
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

func (m *mockDeps) RankOf(_ context.Context, rating int) (int, error) {
	m.gotRating = rating
	if m.err != nil {
		return 0, m.err
	}
	return m.rank, nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestRouter(deps *mockDeps) *mux.Router {
	router := mux.NewRouter()
	server := api.NewServer(deps, mockStats{})
	server.Register(context.Background(), router)
	return router
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given a leaderboard endpoint", t, func() {
		deps := &mockDeps{entries: []api.Entry{
			{Rank: 1, UserID: "a", Username: "alex", Rating: 100},
			{Rank: 2, UserID: "b", Username: "blake", Rating: 90},
			{Rank: 2, UserID: "c", Username: "casey", Rating: 90},
			{Rank: 4, UserID: "d", Username: "dakota", Rating: 80},
		}}
		router := newTestRouter(deps)

		Convey("When requesting without parameters", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then defaults apply", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.gotLimit, ShouldEqual, 50)
				So(deps.gotOffset, ShouldEqual, 0)

				var body struct {
					Data  []api.Entry `json:"data"`
					Page  int         `json:"page"`
					Limit int         `json:"limit"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Page, ShouldEqual, 1)
				So(body.Limit, ShouldEqual, 50)
				So(body.Data, ShouldHaveLength, 4)
				So(body.Data[2].Rank, ShouldEqual, 2)
				So(body.Data[3].Rank, ShouldEqual, 4)
			})

			Convey("Then CORS headers are present", func() {
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
			})
		})

		Convey("When requesting a later page", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?page=3&limit=10", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then the offset is derived from page and limit", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.gotLimit, ShouldEqual, 10)
				So(deps.gotOffset, ShouldEqual, 20)
			})
		})

		Convey("When parameters are invalid", func() {
			for _, query := range []string{
				"?page=0", "?page=-1", "?page=abc",
				"?limit=0", "?limit=-5", "?limit=abc", "?limit=101",
			} {
				req := httptest.NewRequest(http.MethodGet, "/api/leaderboard"+query, nil)
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)

				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the service fails", func() {
			deps.err = repository.ErrUnavailable
			req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then a 500 with an error body is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				var body struct {
					Code string `json:"code"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "internal_error")
			})
		})

		Convey("When sending a preflight request", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/leaderboard", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then it is short-circuited with 204", func() {
				So(rec.Code, ShouldEqual, http.StatusNoContent)
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
			})
		})
	})

	Convey("Given custom page limits", t, func() {
		deps := &mockDeps{}
		router := mux.NewRouter()
		server := api.NewServer(deps, mockStats{}, api.WithPageLimits(20, 40))
		server.Register(context.Background(), router)

		Convey("When requesting without a limit", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then the custom default applies", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.gotLimit, ShouldEqual, 20)
			})
		})

		Convey("When exceeding the custom maximum", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit=41", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestSearchEndpoint(t *testing.T) {
	Convey("Given a search endpoint", t, func() {
		deps := &mockDeps{hits: []api.Hit{
			{GlobalRank: 3, Username: "albert", Rating: 500},
			{GlobalRank: 3, Username: "alex", Rating: 500},
		}}
		router := newTestRouter(deps)

		Convey("When searching with a valid query", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/search?q=al", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then the hits envelope is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Data []api.Hit `json:"data"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Data, ShouldHaveLength, 2)
				So(body.Data[0].GlobalRank, ShouldEqual, body.Data[1].GlobalRank)
			})
		})

		Convey("When the query carries whitespace and uppercase", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/search?q=%20AL%20", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then it is normalized before reaching the core", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.gotPrefix, ShouldEqual, "al")
			})
		})

		Convey("When the query is empty or whitespace", func() {
			for _, query := range []string{"", "?q=", "?q=%20%20"} {
				req := httptest.NewRequest(http.MethodGet, "/api/search"+query, nil)
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)

				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the service fails", func() {
			deps.err = repository.ErrUnavailable
			req := httptest.NewRequest(http.MethodGet, "/api/search?q=al", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then a 500 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestRankEndpoint(t *testing.T) {
	Convey("Given a rank endpoint", t, func() {
		deps := &mockDeps{rank: 7}
		router := newTestRouter(deps)

		Convey("When requesting the rank of a rating", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/rank?rating=1500", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then the rank envelope is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.gotRating, ShouldEqual, 1500)

				var body struct {
					Rating int `json:"rating"`
					Rank   int `json:"rank"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Rating, ShouldEqual, 1500)
				So(body.Rank, ShouldEqual, 7)
			})
		})

		Convey("When the rating is missing or not an integer", func() {
			for _, query := range []string{"", "?rating=", "?rating=abc", "?rating=1.5"} {
				req := httptest.NewRequest(http.MethodGet, "/api/rank"+query, nil)
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)

				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the service fails", func() {
			deps.err = repository.ErrUnavailable
			req := httptest.NewRequest(http.MethodGet, "/api/rank?rating=1500", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then a 500 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given a stats endpoint", t, func() {
		router := newTestRouter(&mockDeps{})

		Convey("When requesting stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then the stats payload is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var body map[string]interface{}
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body["started"], ShouldEqual, true)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given a health endpoint", t, func() {
		router := newTestRouter(&mockDeps{})

		Convey("When requesting health", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then metrics are served with 200", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}
