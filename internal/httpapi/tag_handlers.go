package httpapi

import (
	"net/http"
	"strings"

	"scanid.app/internal/access"
	"scanid.app/internal/audit"
	"scanid.app/internal/tags"
)

type createTagRequest struct {
	SystemEditionID string `json:"system_edition_id"`
	Name            string `json:"name"`
	Color           string `json:"color"`
	Type            string `json:"type"`
	SortOrder       int    `json:"sort_order"`
}

type updateTagRequest struct {
	Name      *string `json:"name"`
	Color     *string `json:"color"`
	IsActive  *bool   `json:"is_active"`
	SortOrder *int    `json:"sort_order"`
}

type reorderTagsRequest struct {
	SystemEditionID string            `json:"system_edition_id"`
	Updates         []tags.OrderUpdate `json:"updates"`
}

type mergeTagsRequest struct {
	SystemEditionID string   `json:"system_edition_id"`
	SourceTagIDs    []string `json:"source_tag_ids"`
	TargetTagID     string   `json:"target_tag_id"`
	TargetName      string   `json:"target_name"`
}

func (a *API) handleTagsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listTags(w, r)
	case http.MethodPost:
		a.createTag(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTagResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/tags/"), "/")
	switch path {
	case "":
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	case "order":
		a.reorderTags(w, r)
		return
	case "merge":
		a.mergeTags(w, r)
		return
	case "stats":
		a.tagStats(w, r)
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getTag(w, r, path)
	case http.MethodPut:
		a.updateTag(w, r, path)
	case http.MethodDelete:
		a.deleteTag(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// tagContext resolves the permission context and targets the edition given
// in the request, for super admins operating across editions.
func (a *API) tagContext(w http.ResponseWriter, r *http.Request, explicitEdition string) (access.PermissionContext, bool) {
	pc, ok := access.PermissionsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return access.PermissionContext{}, false
	}
	pc.TargetSystemEditionID = strings.TrimSpace(explicitEdition)
	return pc, true
}

func (a *API) listTags(w http.ResponseWriter, r *http.Request) {
	pc, ok := a.tagContext(w, r, r.URL.Query().Get("system_edition_id"))
	if !ok {
		return
	}
	if !tags.CanReadTags(pc) {
		writeError(w, r, http.StatusForbidden, "tag access denied")
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	q := tags.ListQuery{
		SystemEditionID: tags.EditionFor(pc),
		IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
		Filter:          filter,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		t, ok := tags.ParseType(raw)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "unsupported tag type")
			return
		}
		q.Type = t
	}

	items, total, err := a.tags.List(r.Context(), q)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, listPayload{Items: items, Meta: metaFor(filter, total)})
}

func (a *API) createTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	pc, ok := a.tagContext(w, r, req.SystemEditionID)
	if !ok {
		return
	}
	if !tags.CanCreateTag(pc) {
		writeError(w, r, http.StatusForbidden, "tag creation denied")
		return
	}

	tag, err := a.tags.Create(r.Context(), tags.CreateInput{
		SystemEditionID: tags.EditionFor(pc),
		Name:            req.Name,
		Color:           req.Color,
		Type:            req.Type,
		SortOrder:       req.SortOrder,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "create", "tags", "created tag "+tag.Name, audit.Entry{
		SystemEditionID: tag.SystemEditionID,
		Metadata:        map[string]string{"tag_id": tag.ID, "type": string(tag.Type)},
	})
	writeData(w, r, http.StatusCreated, tag)
}

func (a *API) getTag(w http.ResponseWriter, r *http.Request, id string) {
	pc, ok := a.tagContext(w, r, r.URL.Query().Get("system_edition_id"))
	if !ok {
		return
	}
	tag, err := a.tags.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	pc.TargetSystemEditionID = tag.SystemEditionID
	if !tags.CanReadTags(pc) || tags.EditionFor(pc) != tag.SystemEditionID {
		writeError(w, r, http.StatusForbidden, "tag access denied")
		return
	}
	writeData(w, r, http.StatusOK, tag)
}

func (a *API) updateTag(w http.ResponseWriter, r *http.Request, id string) {
	pc, ok := a.tagContext(w, r, "")
	if !ok {
		return
	}
	existing, err := a.tags.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	pc.TargetSystemEditionID = existing.SystemEditionID
	if !tags.CanUpdateTag(pc) || tags.EditionFor(pc) != existing.SystemEditionID {
		writeError(w, r, http.StatusForbidden, "tag update denied")
		return
	}

	var req updateTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	tag, err := a.tags.Update(r.Context(), id, tags.Update{
		Name:      req.Name,
		Color:     req.Color,
		IsActive:  req.IsActive,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "update", "tags", "updated tag "+tag.Name, audit.Entry{
		SystemEditionID: tag.SystemEditionID,
		Metadata:        map[string]string{"tag_id": tag.ID},
	})
	writeData(w, r, http.StatusOK, tag)
}

func (a *API) deleteTag(w http.ResponseWriter, r *http.Request, id string) {
	pc, ok := a.tagContext(w, r, "")
	if !ok {
		return
	}
	existing, err := a.tags.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	pc.TargetSystemEditionID = existing.SystemEditionID
	if !tags.CanDeleteTag(pc) || tags.EditionFor(pc) != existing.SystemEditionID {
		writeError(w, r, http.StatusForbidden, "tag deletion denied")
		return
	}
	if err := a.tags.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "delete", "tags", "deleted tag "+existing.Name, audit.Entry{
		SystemEditionID: existing.SystemEditionID,
		Metadata:        map[string]string{"tag_id": existing.ID},
	})
	writeMessage(w, r, http.StatusOK, "tag deleted")
}

func (a *API) reorderTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	var req reorderTagsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	pc, ok := a.tagContext(w, r, req.SystemEditionID)
	if !ok {
		return
	}
	if !tags.CanManageTagOrder(pc) {
		writeError(w, r, http.StatusForbidden, "tag reorder denied")
		return
	}
	if err := a.tags.Reorder(r.Context(), tags.EditionFor(pc), req.Updates); err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "reorder", "tags", "reordered tags", audit.Entry{
		SystemEditionID: tags.EditionFor(pc),
	})
	writeMessage(w, r, http.StatusOK, "tag order updated")
}

func (a *API) mergeTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req mergeTagsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	pc, ok := a.tagContext(w, r, req.SystemEditionID)
	if !ok {
		return
	}
	if !tags.CanManageTagOrder(pc) {
		writeError(w, r, http.StatusForbidden, "tag merge denied")
		return
	}
	tag, err := a.tags.Merge(r.Context(), tags.MergeInput{
		SystemEditionID: tags.EditionFor(pc),
		SourceTagIDs:    req.SourceTagIDs,
		TargetTagID:     req.TargetTagID,
		TargetName:      req.TargetName,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "merge", "tags", "merged tags into "+tag.Name, audit.Entry{
		SystemEditionID: tag.SystemEditionID,
		Metadata:        map[string]string{"target_tag_id": tag.ID},
	})
	writeData(w, r, http.StatusOK, tag)
}

func (a *API) tagStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	pc, ok := a.tagContext(w, r, r.URL.Query().Get("system_edition_id"))
	if !ok {
		return
	}
	if !tags.CanReadTags(pc) {
		writeError(w, r, http.StatusForbidden, "tag access denied")
		return
	}
	stats, err := a.tags.Stats(r.Context(), tags.EditionFor(pc))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, stats)
}
