// Like handlers.
//
//   - POST /add-like/              (form field post_id)
//   - POST /posts/{id}/like
//
// Both require a live browsing session, resolved upstream by the session
// middleware in load mode. A visitor is counted at most once per post.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-ministry-site/internal/http/middleware"
	"github.com/tbourn/go-ministry-site/internal/services"
)

// LikeResponse is the result of a like request.
type LikeResponse struct {
	PostID uint `json:"post_id" example:"7"`
	// Likes is the post's counter after the request.
	Likes int `json:"likes" example:"13"`
	// Liked is always true on success: the visitor now likes the post.
	Liked bool `json:"liked" example:"true"`
	// AlreadyLiked reports that this visitor had liked the post before and
	// the counter was left unchanged.
	AlreadyLiked bool `json:"already_liked" example:"false"`
}

// parsePostID parses a positive post id. Blank input maps to zero so the
// service reports it as missing.
func parsePostID(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, errors.New("post id must be a positive integer")
	}
	return uint(n), nil
}

// AddLike godoc
// @ID          addLike
// @Summary     Like a scripture post (form)
// @Description Registers a like for the current visitor. Repeat likes from the same visitor leave the counter unchanged.
// @Tags        Likes
// @Accept      x-www-form-urlencoded
// @Produce     json
// @Param       post_id  formData  int  true  "Scripture post ID"  minimum(1)
// @Success     200  {object}  handlers.LikeResponse
// @Failure     400  {object}  handlers.ErrorResponse "Missing post id or no session"
// @Failure     404  {object}  handlers.ErrorResponse "Post not found"
// @Failure     429  {object}  handlers.ErrorResponse "Rate limited"
// @Failure     503  {object}  handlers.ErrorResponse "Conflict, retry"
// @Router      /add-like/ [post]
func (h *Handlers) AddLike(c *gin.Context) {
	h.like(c, c.PostForm("post_id"))
}

// LikePost godoc
// @ID          likePost
// @Summary     Like a scripture post
// @Description Same as /add-like/ with the post id in the path.
// @Tags        Likes
// @Produce     json
// @Param       id  path  int  true  "Scripture post ID"  minimum(1)
// @Success     200  {object}  handlers.LikeResponse
// @Failure     400  {object}  handlers.ErrorResponse "Invalid post id or no session"
// @Failure     404  {object}  handlers.ErrorResponse "Post not found"
// @Failure     429  {object}  handlers.ErrorResponse "Rate limited"
// @Failure     503  {object}  handlers.ErrorResponse "Conflict, retry"
// @Router      /posts/{id}/like [post]
func (h *Handlers) LikePost(c *gin.Context) {
	h.like(c, c.Param("id"))
}

func (h *Handlers) like(c *gin.Context, rawID string) {
	postID, err := parsePostID(rawID)
	if err != nil {
		middleware.ObserveLike(middleware.LikeRejected)
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	rc := services.RequestContext{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if sess, found := middleware.SessionFrom(c); found {
		rc.SessionID = sess.ViewerID
	}

	res, err := h.likes.RegisterLike(c.Request.Context(), postID, rc)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingPostID):
			middleware.ObserveLike(middleware.LikeRejected)
			fail(c, http.StatusBadRequest, ErrCodeMissingPostID, "post_id is required")
		case errors.Is(err, services.ErrNoSession):
			middleware.ObserveLike(middleware.LikeRejected)
			fail(c, http.StatusBadRequest, ErrCodeNoSession, "load the page before liking a post")
		case errors.Is(err, services.ErrPostNotFound):
			middleware.ObserveLike(middleware.LikeNotFound)
			fail(c, http.StatusNotFound, ErrCodeNotFound, "post not found")
		case errors.Is(err, services.ErrLikeConflict):
			middleware.ObserveLike(middleware.LikeConflict)
			unavailable(c, ErrCodeLikeConflict, err.Error(), time.Second)
		default:
			middleware.ObserveLike(middleware.LikeError)
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	if res.Accepted {
		middleware.ObserveLike(middleware.LikeAccepted)
	} else {
		middleware.ObserveLike(middleware.LikeDuplicate)
	}
	liked(c, res)
}
