package api

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lenshub/lenshub/pkg/market"
)

var _ = Describe("component handlers", func() {
	var (
		env        *testEnv
		userToken  string
		adminToken string
	)

	BeforeEach(func() {
		env = newTestEnv()
		userToken, _ = env.signUp("alice")
		adminToken, _ = env.newAdmin("root")
	})

	// submit creates a component as the given user and returns it.
	submit := func(token, name, category string) *market.Component {
		var created market.Component
		resp := env.do(http.MethodPost, "/api/components", token, componentRequest{
			Name:     name,
			Category: category,
		}, &created)
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		return &created
	}

	// approve moves a component to approved as the admin.
	approve := func(id string) {
		resp := env.do(http.MethodPut, "/api/admin/components/"+id+"/status", adminToken,
			reviewRequest{Status: market.StatusApproved}, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	}

	Describe("POST /api/components", func() {
		It("creates a pending submission owned by the caller", func() {
			created := submit(userToken, "实时翻译", "translation")

			Expect(created.Status).To(Equal(market.StatusPending))
			Expect(created.AuthorID).NotTo(BeEmpty())
		})

		It("requires a session", func() {
			resp := env.do(http.MethodPost, "/api/components", "", componentRequest{Name: "x"}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("requires a name", func() {
			resp := env.do(http.MethodPost, "/api/components", userToken, componentRequest{}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /api/components", func() {
		It("lists only approved components by default", func() {
			pending := submit(userToken, "实时翻译", "translation")
			approvedSrc := submit(userToken, "步行导航", "navigation")
			approve(approvedSrc.ID)

			var list []market.ComponentWithAuthor
			resp := env.do(http.MethodGet, "/api/components", "", nil, &list)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(list).To(HaveLen(1))
			Expect(list[0].ID).To(Equal(approvedSrc.ID))
			Expect(list[0].ID).NotTo(Equal(pending.ID))
		})

		It("lets admins filter by explicit status", func() {
			submit(userToken, "实时翻译", "translation")

			var list []market.ComponentWithAuthor
			resp := env.do(http.MethodGet, "/api/components?status=pending", adminToken, nil, &list)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(list).To(HaveLen(1))
		})

		It("refuses a status filter from non-admins", func() {
			resp := env.do(http.MethodGet, "/api/components?status=pending", userToken, nil, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		})
	})

	Describe("GET /api/components/categories", func() {
		It("lists distinct categories, not a component lookup", func() {
			c := submit(userToken, "实时翻译", "translation")
			approve(c.ID)

			var categories []string
			resp := env.do(http.MethodGet, "/api/components/categories", "", nil, &categories)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(categories).To(ConsistOf("translation"))
		})

		It("returns an empty array when nothing exists", func() {
			var categories []string
			resp := env.do(http.MethodGet, "/api/components/categories", "", nil, &categories)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(categories).To(BeEmpty())
		})
	})

	Describe("PUT /api/components/:id", func() {
		It("sends author edits back to pending review", func() {
			c := submit(userToken, "实时翻译", "translation")
			approve(c.ID)

			var updated market.Component
			resp := env.do(http.MethodPut, "/api/components/"+c.ID, userToken,
				componentRequest{Description: "更快的翻译"}, &updated)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(updated.Description).To(Equal("更快的翻译"))
			Expect(updated.Status).To(Equal(market.StatusPending))
		})

		It("keeps the status for admin edits", func() {
			c := submit(userToken, "实时翻译", "translation")
			approve(c.ID)

			var updated market.Component
			resp := env.do(http.MethodPut, "/api/components/"+c.ID, adminToken,
				componentRequest{Description: "审核备注"}, &updated)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(updated.Status).To(Equal(market.StatusApproved))
		})

		It("refuses edits by non-authors", func() {
			c := submit(userToken, "实时翻译", "translation")
			otherToken, _ := env.signUp("bob")

			resp := env.do(http.MethodPut, "/api/components/"+c.ID, otherToken,
				componentRequest{Description: "hijack"}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		})
	})

	Describe("DELETE /api/components/:id", func() {
		It("lets the author delete", func() {
			c := submit(userToken, "实时翻译", "translation")

			resp := env.do(http.MethodDelete, "/api/components/"+c.ID, userToken, nil, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

			resp = env.do(http.MethodGet, "/api/components/"+c.ID, "", nil, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("refuses non-authors", func() {
			c := submit(userToken, "实时翻译", "translation")
			otherToken, _ := env.signUp("bob")

			resp := env.do(http.MethodDelete, "/api/components/"+c.ID, otherToken, nil, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		})
	})

	Describe("PUT /api/admin/components/:id/status", func() {
		It("requires an admin", func() {
			c := submit(userToken, "实时翻译", "translation")

			resp := env.do(http.MethodPut, "/api/admin/components/"+c.ID+"/status", userToken,
				reviewRequest{Status: market.StatusApproved}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		})

		It("rejects an unknown status", func() {
			c := submit(userToken, "实时翻译", "translation")

			resp := env.do(http.MethodPut, "/api/admin/components/"+c.ID+"/status", adminToken,
				map[string]string{"status": "maybe"}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /api/components/:id/download", func() {
		It("increments and returns the download count without a session", func() {
			c := submit(userToken, "实时翻译", "translation")
			approve(c.ID)

			var body struct {
				DownloadCount int `json:"download_count"`
			}
			resp := env.do(http.MethodPost, "/api/components/"+c.ID+"/download", "", nil, &body)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body.DownloadCount).To(Equal(1))

			resp = env.do(http.MethodPost, "/api/components/"+c.ID+"/download", "", nil, &body)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body.DownloadCount).To(Equal(2))
		})

		It("404s on unknown components", func() {
			resp := env.do(http.MethodPost, "/api/components/missing/download", "", nil, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /api/components/:id/stats", func() {
		It("aggregates downloads, comments, and favorites", func() {
			c := submit(userToken, "实时翻译", "translation")
			approve(c.ID)

			env.do(http.MethodPost, "/api/components/"+c.ID+"/download", "", nil, nil)
			env.do(http.MethodPost, "/api/components/"+c.ID+"/comments", userToken,
				commentRequest{Content: "很好用", Rating: 5}, nil)
			env.do(http.MethodPost, "/api/components/"+c.ID+"/favorite", userToken, nil, nil)

			var stats market.ComponentStats
			resp := env.do(http.MethodGet, "/api/components/"+c.ID+"/stats", "", nil, &stats)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(stats.TotalDownloads).To(Equal(1))
			Expect(stats.CommentCount).To(Equal(1))
			Expect(stats.AverageRating).To(BeNumerically("~", 5.0, 0.001))
			Expect(stats.FavoriteCount).To(Equal(1))
		})
	})

	Describe("GET /api/users/:id/components", func() {
		It("shows only approved components to strangers but everything to the owner", func() {
			carolToken, profile := env.signUp("carol")

			pending := submit(carolToken, "文字识别", "recognition")
			approvedSrc := submit(carolToken, "步行导航", "navigation")
			approve(approvedSrc.ID)

			var public []market.ComponentWithAuthor
			resp := env.do(http.MethodGet, "/api/users/"+profile.ID+"/components", "", nil, &public)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(public).To(HaveLen(1))

			var own []market.ComponentWithAuthor
			resp = env.do(http.MethodGet, "/api/users/"+profile.ID+"/components", carolToken, nil, &own)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(own).To(HaveLen(2))
			Expect([]string{own[0].ID, own[1].ID}).To(ConsistOf(pending.ID, approvedSrc.ID))
		})
	})
})
