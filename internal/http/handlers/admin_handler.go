// Admin content handlers.
//
//   - GET    /admin/resources
//   - GET    /admin/{resource}           (list, filter, search, paginate)
//   - POST   /admin/{resource}           (create, Idempotency-Key aware)
//   - GET    /admin/{resource}/{id}
//   - PUT    /admin/{resource}/{id}      (partial merge)
//   - DELETE /admin/{resource}/{id}
//
// Every route sits behind the admin token middleware.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-ministry-site/internal/http/middleware"
	"github.com/tbourn/go-ministry-site/internal/services"
	"github.com/tbourn/go-ministry-site/internal/utils"
)

// ResourcesResponse lists the admin resource names.
type ResourcesResponse struct {
	Resources []string `json:"resources" example:"beliefs,leaders"`
}

// ListRecordsResponse wraps a page of records.
type ListRecordsResponse struct {
	Items      any        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// parseFlag reads the publishing filter from ?active= or ?approved=.
func parseFlag(c *gin.Context) (*bool, error) {
	raw := strings.TrimSpace(c.Query("active"))
	if raw == "" {
		raw = c.Query("approved")
	}
	flag, err := utils.ParseOptionalBool(raw)
	if err != nil {
		return nil, errors.New("active/approved must be true or false")
	}
	return flag, nil
}

func parseRecordID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return 0, false
	}
	return uint(n), true
}

func readPayload(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read request body")
		return nil, false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "JSON body required")
		return nil, false
	}
	return body, true
}

// adminFail maps service errors onto the error envelope.
func adminFail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownResource):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrRecordNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "record not found")
	case errors.Is(err, services.ErrInvalidRecord):
		fail(c, http.StatusBadRequest, ErrCodeInvalidRecord, err.Error())
	case errors.Is(err, services.ErrContactInfoExists):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// ListResources godoc
// @ID          listResources
// @Summary     List admin resources
// @Tags        Admin
// @Produce     json
// @Param       X-Admin-Token  header  string  true  "Admin token"
// @Success     200  {object} handlers.ResourcesResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /admin/resources [get]
func (h *Handlers) ListResources(c *gin.Context) {
	ok(c, http.StatusOK, ResourcesResponse{Resources: h.admin.Resources()})
}

// ListRecords godoc
// @ID          listRecords
// @Summary     List records of a resource
// @Description Filters by publishing flag, ranks by text relevance when q is given, otherwise sorts.
// @Tags        Admin
// @Produce     json
// @Param       X-Admin-Token  header  string  true   "Admin token"
// @Param       resource       path    string  true   "Resource name"  example(leaders)
// @Param       active         query   bool    false  "Filter by is_active"
// @Param       approved       query   bool    false  "Filter by is_approved (testimonies)"
// @Param       q              query   string  false  "Text search"
// @Param       sort           query   string  false  "order, date, created or likes; prefix - for descending"  example(-created)
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object} handlers.ListRecordsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Unknown resource"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/{resource} [get]
func (h *Handlers) ListRecords(c *gin.Context) {
	flag, err := parseFlag(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	p := services.ListParams{
		Flag:     flag,
		Query:    strings.TrimSpace(c.Query("q")),
		Sort:     strings.TrimSpace(c.Query("sort")),
		Page:     utils.AtoiDefault(c.Query("page"), 1),
		PageSize: utils.AtoiDefault(c.Query("page_size"), 20),
	}

	res, err := h.admin.List(c.Request.Context(), c.Param("resource"), p)
	if err != nil {
		if errors.Is(err, services.ErrUnknownResource) {
			adminFail(c, err)
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListRecordsResponse{
		Items:      res.Items,
		Pagination: newPagination(res.Page, res.PageSize, res.Total),
	})
}

// GetRecord godoc
// @ID          getRecord
// @Summary     Get a record
// @Tags        Admin
// @Produce     json
// @Param       X-Admin-Token  header  string  true  "Admin token"
// @Param       resource       path    string  true  "Resource name"
// @Param       id             path    int     true  "Record ID"
// @Success     200  {object} map[string]any
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /admin/{resource}/{id} [get]
func (h *Handlers) GetRecord(c *gin.Context) {
	id, valid := parseRecordID(c)
	if !valid {
		return
	}
	rec, err := h.admin.Get(c.Request.Context(), c.Param("resource"), id)
	if err != nil {
		adminFail(c, err)
		return
	}
	ok(c, http.StatusOK, rec)
}

// CreateRecord godoc
// @ID          createRecord
// @Summary     Create a record
// @Description Unknown fields are ignored; id, timestamps and like counters cannot be set.
// @Description Supports idempotency via the Idempotency-Key header (same key → same record).
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Param       X-Admin-Token    header  string  true   "Admin token"
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       resource         path    string  true   "Resource name"
// @Param       body             body    object  true   "Record fields"
// @Success     201  {object} map[string]any
// @Success     200  {object} map[string]any "Replayed result"
// @Failure     400  {object} handlers.ErrorResponse "Invalid record"
// @Failure     404  {object} handlers.ErrorResponse "Unknown resource"
// @Failure     409  {object} handlers.ErrorResponse "Contact info already exists"
// @Router      /admin/{resource} [post]
func (h *Handlers) CreateRecord(c *gin.Context) {
	payload, valid := readPayload(c)
	if !valid {
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	rec, replayed, err := h.admin.Create(c.Request.Context(), middleware.ActorFrom(c), c.Param("resource"), key, payload)
	if err != nil {
		adminFail(c, err)
		return
	}
	created(c, rec, replayed)
}

// UpdateRecord godoc
// @ID          updateRecord
// @Summary     Update a record
// @Description Fields present in the body replace stored values; absent fields are kept.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Param       X-Admin-Token  header  string  true  "Admin token"
// @Param       resource       path    string  true  "Resource name"
// @Param       id             path    int     true  "Record ID"
// @Param       body           body    object  true  "Fields to change"
// @Success     200  {object} map[string]any
// @Failure     400  {object} handlers.ErrorResponse "Invalid record"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /admin/{resource}/{id} [put]
func (h *Handlers) UpdateRecord(c *gin.Context) {
	id, valid := parseRecordID(c)
	if !valid {
		return
	}
	payload, valid := readPayload(c)
	if !valid {
		return
	}
	rec, err := h.admin.Update(c.Request.Context(), c.Param("resource"), id, payload)
	if err != nil {
		adminFail(c, err)
		return
	}
	ok(c, http.StatusOK, rec)
}

// DeleteRecord godoc
// @ID          deleteRecord
// @Summary     Delete a record
// @Description Deleting a scripture post also removes its like records.
// @Tags        Admin
// @Param       X-Admin-Token  header  string  true  "Admin token"
// @Param       resource       path    string  true  "Resource name"
// @Param       id             path    int     true  "Record ID"
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /admin/{resource}/{id} [delete]
func (h *Handlers) DeleteRecord(c *gin.Context) {
	id, valid := parseRecordID(c)
	if !valid {
		return
	}
	if err := h.admin.Delete(c.Request.Context(), c.Param("resource"), id); err != nil {
		adminFail(c, err)
		return
	}
	noContent(c)
}
