package handler

//go:generate mockgen -source=handler.go -destination=mocks/feed-mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"eureka/internal/feed/handler/mocks"
	"eureka/pkg/domain"
	dErrors "eureka/pkg/domain-errors"
	"eureka/pkg/realtime/wire"
	"eureka/pkg/testutil"
)

type FeedHandlerSuite struct {
	suite.Suite
	mockService *mocks.MockService
	router      chi.Router
	viewer      domain.UserID
	postID      domain.PostID
}

func TestFeedHandlerSuite(t *testing.T) {
	suite.Run(t, new(FeedHandlerSuite))
}

func (s *FeedHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.mockService, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
	s.viewer = domain.NewUserID()
	s.postID = domain.NewPostID()
}

func (s *FeedHandlerSuite) do(method, path string, body any) *http.Request {
	return testutil.AsUser(testutil.NewJSONRequest(s.T(), method, path, body), s.viewer)
}

func (s *FeedHandlerSuite) TestCreatePost() {
	s.Run("returns 201 with the hydrated post", func() {
		post := wire.Post{ID: s.postID.String(), Content: "hello", Category: "Inquiry", Timestamp: time.Now().UTC()}
		s.mockService.EXPECT().CreatePost(gomock.Any(), s.viewer, "hello", "Inquiry").Return(post, nil)

		rr := testutil.Do(s.router, s.do(http.MethodPost, "/posts", wire.CreatePostRequest{Content: "hello", Category: "Inquiry"}))

		s.Equal(http.StatusCreated, rr.Code)
		got := testutil.Decode[wire.Post](s.T(), rr)
		s.Equal(post.ID, got.ID)
		s.Contains(rr.Body.String(), `"isBookmarked":false`)
	})

	s.Run("malformed body is 400", func() {
		req := testutil.AsUser(testutil.NewRawJSONRequest(http.MethodPost, "/posts", `{"content":`), s.viewer)
		testutil.AssertStatusAndError(s.T(), testutil.Do(s.router, req), http.StatusBadRequest, "bad_request")
	})

	s.Run("invalid category is 400", func() {
		s.mockService.EXPECT().CreatePost(gomock.Any(), s.viewer, "hello", "Gossip").
			Return(wire.Post{}, dErrors.New(dErrors.CodeInvalidInput, "invalid category"))
		rr := testutil.Do(s.router, s.do(http.MethodPost, "/posts", wire.CreatePostRequest{Content: "hello", Category: "Gossip"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *FeedHandlerSuite) TestListRoutes() {
	posts := []wire.Post{{ID: "a"}, {ID: "b"}}

	s.Run("all posts", func() {
		s.mockService.EXPECT().List(gomock.Any(), s.viewer).Return(posts, nil)
		rr := testutil.Do(s.router, s.do(http.MethodGet, "/posts", nil))
		s.Equal(http.StatusOK, rr.Code)
		s.Len(testutil.Decode[[]wire.Post](s.T(), rr), 2)
	})

	s.Run("by category", func() {
		s.mockService.EXPECT().ListByCategory(gomock.Any(), s.viewer, "Validate").Return(posts[:1], nil)
		rr := testutil.Do(s.router, s.do(http.MethodGet, "/posts/category/Validate", nil))
		s.Equal(http.StatusOK, rr.Code)
		s.Len(testutil.Decode[[]wire.Post](s.T(), rr), 1)
	})

	s.Run("bookmarks", func() {
		s.mockService.EXPECT().Bookmarks(gomock.Any(), s.viewer).Return([]wire.Post{}, nil)
		rr := testutil.Do(s.router, s.do(http.MethodGet, "/bookmarks", nil))
		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`[]`, rr.Body.String())
	})
}

func (s *FeedHandlerSuite) TestGetPost() {
	s.Run("found", func() {
		s.mockService.EXPECT().Get(gomock.Any(), s.viewer, s.postID).Return(wire.Post{ID: s.postID.String()}, nil)
		rr := testutil.Do(s.router, s.do(http.MethodGet, "/posts/"+s.postID.String(), nil))
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("not found", func() {
		s.mockService.EXPECT().Get(gomock.Any(), s.viewer, s.postID).Return(wire.Post{}, dErrors.New(dErrors.CodeNotFound, "Post not found."))
		rr := testutil.Do(s.router, s.do(http.MethodGet, "/posts/"+s.postID.String(), nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("malformed id never reaches the service", func() {
		rr := testutil.Do(s.router, s.do(http.MethodGet, "/posts/not-a-uuid", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *FeedHandlerSuite) TestToggles() {
	s.mockService.EXPECT().ToggleLike(gomock.Any(), s.viewer, s.postID).Return(wire.LikeState{Likes: 11, IsLiked: true}, nil)
	rr := testutil.Do(s.router, s.do(http.MethodPost, "/posts/"+s.postID.String()+"/like", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"likes":11,"isLiked":true}`, rr.Body.String())

	s.mockService.EXPECT().ToggleBookmark(gomock.Any(), s.viewer, s.postID).Return(wire.BookmarkState{IsBookmarked: true}, nil)
	rr = testutil.Do(s.router, s.do(http.MethodPost, "/posts/"+s.postID.String()+"/bookmark", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"isBookmarked":true}`, rr.Body.String())
}

func (s *FeedHandlerSuite) TestComments() {
	path := "/posts/" + s.postID.String() + "/comments"

	s.Run("list", func() {
		s.mockService.EXPECT().Comments(gomock.Any(), s.postID).Return([]wire.Comment{{ID: "c1"}}, nil)
		rr := testutil.Do(s.router, s.do(http.MethodGet, path, nil))
		s.Equal(http.StatusOK, rr.Code)
		s.Equal("c1", testutil.Decode[[]wire.Comment](s.T(), rr)[0].ID)
	})

	s.Run("create returns the comment with 201", func() {
		s.mockService.EXPECT().CreateComment(gomock.Any(), s.viewer, s.postID, "nice").Return(wire.Comment{ID: "c2", Content: "nice"}, nil)
		rr := testutil.Do(s.router, s.do(http.MethodPost, path, wire.CreateCommentRequest{Content: "nice"}))
		s.Equal(http.StatusCreated, rr.Code)
		s.Equal("c2", testutil.Decode[wire.Comment](s.T(), rr).ID)
	})
}
