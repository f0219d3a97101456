package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/linkhub/internal/auth"
	"github.com/joestump/linkhub/internal/links"
	"github.com/joestump/linkhub/internal/respond"
	"github.com/joestump/linkhub/internal/validate"
)

// linksHandler provides REST handlers for link management. Every route runs
// behind RequireAccount; the caller is always the owner being checked.
type linksHandler struct {
	links *links.Service
	log   *zap.Logger
}

// List returns a page of the caller's links, newest first.
// GET /api/links
//
// @Summary      List links
// @Tags         Links
// @Produce      json
// @Param        offset  query     int  false  "Links to skip (default 0)"
// @Param        limit   query     int  false  "Page size (default 10)"
// @Success      200     {object}  LinkListEnvelope
// @Failure      400     {object}  ErrorEnvelope
// @Failure      500     {object}  ErrorEnvelope
// @Security     BearerToken
// @Router       /api/links [get]
func (h *linksHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := parsePagination(r)
	if err != nil {
		respond.SimpleError(err.Error(), http.StatusBadRequest).Write(w)
		return
	}
	page, err := h.links.List(r.Context(), auth.AccountIDFromContext(r.Context()), opts)
	if err != nil {
		h.writeLinkError(w, r, err)
		return
	}
	respond.Success(LinkListResponse{Links: page}, http.StatusOK).Write(w)
}

// Create adds a link owned by the caller.
// POST /api/links
//
// @Summary      Create a link
// @Description  Whitespace is removed from the slug before it is checked and stored.
// @Tags         Links
// @Accept       json
// @Produce      json
// @Param        body  body      links.CreateInput  true  "Link to create"
// @Success      200   {object}  LinkEnvelope
// @Failure      400   {object}  ErrorEnvelope  "invalid data, or name/slug already in use"
// @Failure      500   {object}  ErrorEnvelope
// @Security     BearerToken
// @Router       /api/links [post]
func (h *linksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in links.CreateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	l, err := h.links.Create(r.Context(), auth.AccountIDFromContext(r.Context()), in)
	if err != nil {
		h.writeLinkError(w, r, err)
		return
	}
	respond.Success(LinkResponse{Link: l}, http.StatusOK).Write(w)
}

// Get returns one of the caller's links.
// GET /api/links/{id}
//
// @Summary      Get a link
// @Tags         Links
// @Produce      json
// @Param        id   path      string  true  "Link ID"
// @Success      200  {object}  LinkEnvelope
// @Failure      400  {object}  ErrorEnvelope  "invalid link id"
// @Failure      403  {object}  ErrorEnvelope  "owned by another account"
// @Failure      404  {object}  ErrorEnvelope
// @Security     BearerToken
// @Router       /api/links/{id} [get]
func (h *linksHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.links.Get(r.Context(), auth.AccountIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeLinkError(w, r, err)
		return
	}
	respond.Success(LinkResponse{Link: l}, http.StatusOK).Write(w)
}

// Update changes the supplied fields of one of the caller's links.
// PUT /api/links/{id}
//
// @Summary      Update a link
// @Description  Only fields present in the body are changed.
// @Tags         Links
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Link ID"
// @Param        body  body      links.UpdateInput  true  "Fields to change"
// @Success      200   {object}  LinkEnvelope
// @Failure      400   {object}  ErrorEnvelope
// @Failure      403   {object}  ErrorEnvelope
// @Failure      404   {object}  ErrorEnvelope
// @Security     BearerToken
// @Router       /api/links/{id} [put]
func (h *linksHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in links.UpdateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	l, err := h.links.Update(r.Context(), auth.AccountIDFromContext(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeLinkError(w, r, err)
		return
	}
	respond.Success(LinkResponse{Link: l}, http.StatusOK).Write(w)
}

// Delete soft-deletes one of the caller's links. Repeating it succeeds.
// DELETE /api/links/{id}
//
// @Summary      Delete a link
// @Tags         Links
// @Produce      json
// @Param        id   path      string  true  "Link ID"
// @Success      200  {object}  EmptyEnvelope
// @Failure      400  {object}  ErrorEnvelope
// @Failure      403  {object}  ErrorEnvelope
// @Failure      404  {object}  ErrorEnvelope
// @Security     BearerToken
// @Router       /api/links/{id} [delete]
func (h *linksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.links.Delete(r.Context(), auth.AccountIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeLinkError(w, r, err)
		return
	}
	respond.StatusOnly(http.StatusOK).Write(w)
}

// writeLinkError maps link errors to responses. NotFound and Forbidden share
// a message; only the status tells them apart.
func (h *linksHandler) writeLinkError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, links.ErrLinkExists):
		respond.SimpleError("link with the name or slug provided already exists", http.StatusBadRequest).Write(w)
	case errors.Is(err, links.ErrInvalidID):
		respond.SimpleError("invalid link id", http.StatusBadRequest).Write(w)
	case errors.Is(err, links.ErrNotFound):
		respond.SimpleError("link not found", http.StatusNotFound).Write(w)
	case errors.Is(err, links.ErrForbidden):
		respond.SimpleError("link not found", http.StatusForbidden).Write(w)
	default:
		writeInternal(w, r, h.log, err)
	}
}
