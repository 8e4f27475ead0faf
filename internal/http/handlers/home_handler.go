// Public page handlers.
//
//   - GET /               (HTML page)
//   - GET /home           (JSON snapshot, weak ETag)
package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-ministry-site/internal/repo"
)

// homeETag derives a weak validator from the content aggregate. Likes are
// part of it because counter bumps leave updated_at untouched.
func homeETag(st repo.ContentStats) string {
	var ts int64
	if st.MaxUpdatedAt != nil {
		ts = st.MaxUpdatedAt.UnixNano()
	}
	return fmt.Sprintf(`W/"home:%d:%d:%d"`, st.Count, ts, st.Likes)
}

// Home godoc
// @ID          home
// @Summary     Public page
// @Description Renders the ministry home page and issues a browsing-session cookie on first visit.
// @Tags        Site
// @Produce     html
// @Success     200  {string} string "HTML page"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      / [get]
func (h *Handlers) Home(c *gin.Context) {
	page, err := h.content.HomePage(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	// Render into a buffer so a template error still yields a clean 500.
	var buf bytes.Buffer
	if err := h.renderer.RenderHome(&buf, page); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeRenderFailed, err.Error())
		return
	}
	c.Header("Cache-Control", "private, no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// HomeJSON godoc
// @ID          homeJSON
// @Summary     Public page snapshot
// @Description Returns everything the public page shows. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Site
// @Produce     json
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"home:12:1717200000000000000:40\")
// @Success     200  {object} services.HomePage
// @Header      200  {string} ETag "Weak ETag for current content"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /home [get]
func (h *Handlers) HomeJSON(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if st, err := h.content.Stats(ctx); err == nil {
		etag := homeETag(st)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	page, err := h.content.HomePage(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, page)
}
