package api

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lenshub/lenshub/pkg/market"
)

var _ = Describe("comment handlers", func() {
	var (
		env       *testEnv
		userToken string
		component *market.Component
	)

	BeforeEach(func() {
		env = newTestEnv()
		userToken, _ = env.signUp("alice")

		var created market.Component
		resp := env.do(http.MethodPost, "/api/components", userToken,
			componentRequest{Name: "实时翻译", Category: "translation"}, &created)
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		component = &created
	})

	Describe("POST /api/components/:id/comments", func() {
		It("creates a comment with a rating", func() {
			var comment market.Comment
			resp := env.do(http.MethodPost, "/api/components/"+component.ID+"/comments", userToken,
				commentRequest{Content: "很好用", Rating: 5}, &comment)

			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			Expect(comment.Content).To(Equal("很好用"))
			Expect(comment.Rating).To(Equal(5))
			Expect(comment.ComponentID).To(Equal(component.ID))
		})

		It("requires content", func() {
			resp := env.do(http.MethodPost, "/api/components/"+component.ID+"/comments", userToken,
				commentRequest{Rating: 4}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("accepts a comment without a rating", func() {
			var comment market.Comment
			resp := env.do(http.MethodPost, "/api/components/"+component.ID+"/comments", userToken,
				commentRequest{Content: "还没用过，先围观"}, &comment)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			Expect(comment.Rating).To(BeZero())
		})

		It("rejects out-of-range ratings", func() {
			var errBody ErrorResponse
			resp := env.do(http.MethodPost, "/api/components/"+component.ID+"/comments", userToken,
				commentRequest{Content: "x", Rating: 6}, &errBody)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(errBody.Error).To(Equal("rating must be between 1 and 5, or 0 for no rating"))
		})

		It("404s on unknown components", func() {
			resp := env.do(http.MethodPost, "/api/components/missing/comments", userToken,
				commentRequest{Content: "x"}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /api/components/:id/comments", func() {
		It("joins the commenting profile", func() {
			env.do(http.MethodPost, "/api/components/"+component.ID+"/comments", userToken,
				commentRequest{Content: "赞", Rating: 4}, nil)

			var comments []market.CommentWithUser
			resp := env.do(http.MethodGet, "/api/components/"+component.ID+"/comments", "", nil, &comments)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(comments).To(HaveLen(1))
			Expect(comments[0].User).NotTo(BeNil())
			Expect(comments[0].User.Username).To(Equal("alice"))
		})
	})

	Describe("PUT /api/comments/:id", func() {
		var comment market.Comment

		BeforeEach(func() {
			resp := env.do(http.MethodPost, "/api/components/"+component.ID+"/comments", userToken,
				commentRequest{Content: "还行", Rating: 3}, &comment)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		})

		It("lets the author edit content and rating", func() {
			var updated market.Comment
			resp := env.do(http.MethodPut, "/api/comments/"+comment.ID, userToken,
				commentRequest{Content: "用了一周，很好用", Rating: 5}, &updated)

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(updated.Content).To(Equal("用了一周，很好用"))
			Expect(updated.Rating).To(Equal(5))
			Expect(updated.ID).To(Equal(comment.ID))
		})

		It("leaves unset fields untouched", func() {
			var updated market.Comment
			resp := env.do(http.MethodPut, "/api/comments/"+comment.ID, userToken,
				commentRequest{Rating: 4}, &updated)

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(updated.Content).To(Equal("还行"))
			Expect(updated.Rating).To(Equal(4))
		})

		It("refuses other users", func() {
			otherToken, _ := env.signUp("bob")
			resp := env.do(http.MethodPut, "/api/comments/"+comment.ID, otherToken,
				commentRequest{Content: "hijack"}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		})

		It("lets an admin edit any comment", func() {
			adminToken, _ := env.newAdmin("root")
			var updated market.Comment
			resp := env.do(http.MethodPut, "/api/comments/"+comment.ID, adminToken,
				commentRequest{Content: "内容已由管理员修订"}, &updated)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(updated.Content).To(Equal("内容已由管理员修订"))
		})

		It("rejects out-of-range ratings", func() {
			resp := env.do(http.MethodPut, "/api/comments/"+comment.ID, userToken,
				commentRequest{Rating: 6}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("404s on unknown comments", func() {
			resp := env.do(http.MethodPut, "/api/comments/missing", userToken,
				commentRequest{Content: "x"}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("DELETE /api/comments/:id", func() {
		var comment market.Comment

		BeforeEach(func() {
			resp := env.do(http.MethodPost, "/api/components/"+component.ID+"/comments", userToken,
				commentRequest{Content: "很好用", Rating: 5}, &comment)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		})

		It("lets the author delete their comment", func() {
			resp := env.do(http.MethodDelete, "/api/comments/"+comment.ID, userToken, nil, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		})

		It("refuses other users", func() {
			otherToken, _ := env.signUp("bob")
			resp := env.do(http.MethodDelete, "/api/comments/"+comment.ID, otherToken, nil, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		})

		It("lets an admin delete any comment", func() {
			adminToken, _ := env.newAdmin("root")
			resp := env.do(http.MethodDelete, "/api/comments/"+comment.ID, adminToken, nil, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		})
	})
})

var _ = Describe("favorite handlers", func() {
	var (
		env       *testEnv
		userToken string
		userID    string
		component *market.Component
	)

	BeforeEach(func() {
		env = newTestEnv()
		var profile *market.Profile
		userToken, profile = env.signUp("alice")
		userID = profile.ID

		var created market.Component
		resp := env.do(http.MethodPost, "/api/components", userToken,
			componentRequest{Name: "实时翻译", Category: "translation"}, &created)
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		component = &created
	})

	It("favorites and unfavorites a component", func() {
		resp := env.do(http.MethodPost, "/api/components/"+component.ID+"/favorite", userToken, nil, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		var status struct {
			Favorite bool `json:"favorite"`
		}
		resp = env.do(http.MethodGet, "/api/components/"+component.ID+"/favorite", userToken, nil, &status)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(status.Favorite).To(BeTrue())

		resp = env.do(http.MethodDelete, "/api/components/"+component.ID+"/favorite", userToken, nil, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

		resp = env.do(http.MethodGet, "/api/components/"+component.ID+"/favorite", userToken, nil, &status)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(status.Favorite).To(BeFalse())
	})

	It("lists a user's own favorites", func() {
		env.do(http.MethodPost, "/api/components/"+component.ID+"/favorite", userToken, nil, nil)

		var favorites []market.Favorite
		resp := env.do(http.MethodGet, "/api/users/"+userID+"/favorites", userToken, nil, &favorites)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(favorites).To(HaveLen(1))
		Expect(favorites[0].ComponentID).To(Equal(component.ID))
	})

	It("refuses to list another user's favorites", func() {
		otherToken, _ := env.signUp("bob")

		resp := env.do(http.MethodGet, "/api/users/"+userID+"/favorites", otherToken, nil, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
	})

	It("404s when favoriting an unknown component", func() {
		resp := env.do(http.MethodPost, "/api/components/missing/favorite", userToken, nil, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})
})

var _ = Describe("announcement handlers", func() {
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

	create := func(title string, active bool) *market.Announcement {
		var created market.Announcement
		resp := env.do(http.MethodPost, "/api/announcements", adminToken, announcementRequest{
			Title:    title,
			Content:  "内容",
			IsActive: &active,
		}, &created)
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		return &created
	}

	It("requires an admin to create", func() {
		resp := env.do(http.MethodPost, "/api/announcements", userToken,
			announcementRequest{Title: "上线"}, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
	})

	It("defaults the priority to normal", func() {
		created := create("上线公告", true)
		Expect(created.Priority).To(Equal(market.PriorityNormal))
		Expect(created.CreatedBy).NotTo(BeEmpty())
	})

	It("hides inactive announcements from the public list", func() {
		create("上线公告", true)
		create("草稿", false)

		var public []market.Announcement
		resp := env.do(http.MethodGet, "/api/announcements", "", nil, &public)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(public).To(HaveLen(1))
		Expect(public[0].Title).To(Equal("上线公告"))
	})

	It("shows everything to admins with ?all=true", func() {
		create("上线公告", true)
		create("草稿", false)

		var all []market.Announcement
		resp := env.do(http.MethodGet, "/api/announcements?all=true", adminToken, nil, &all)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(all).To(HaveLen(2))
	})

	It("refuses ?all=true from non-admins", func() {
		resp := env.do(http.MethodGet, "/api/announcements?all=true", userToken, nil, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
	})

	It("updates and deletes as admin", func() {
		created := create("上线公告", true)

		inactive := false
		var updated market.Announcement
		resp := env.do(http.MethodPut, "/api/announcements/"+created.ID, adminToken,
			announcementRequest{IsActive: &inactive}, &updated)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(updated.IsActive).To(BeFalse())

		resp = env.do(http.MethodDelete, "/api/announcements/"+created.ID, adminToken, nil, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
	})
})
