package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/gjson"

	"github.com/dmitrijs2005/teamdb/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "teamdb",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// GetDocument answers with the snapshot plus its last_modified stamp.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	cur, err := h.docs.Get(r.Context())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "no directory stored yet")
			return
		}
		h.logger.Error(r.Context(), "failed to load document", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	body, err := cur.Document.JSON()
	if err != nil {
		h.logger.Error(r.Context(), "failed to encode document", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(body, &out); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	lm, _ := json.Marshal(cur.LastModified.UTC().Format(TimeLayout))
	out["last_modified"] = lm

	w.Header().Set("Last-Modified", cur.LastModified.UTC().Format(http.TimeFormat))
	writeJSON(w, http.StatusOK, out)
}

// PutDocument replaces the snapshot. The body may be JSON or YAML.
func (h *Handler) PutDocument(w http.ResponseWriter, r *http.Request) {
	since, err := precondition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	res, err := h.docs.Put(r.Context(), raw, since, Email(r.Context()))
	switch {
	case err == nil:
	case errors.Is(err, common.ErrVersionConflict):
		writeError(w, http.StatusPreconditionFailed, "the directory was modified on the server since your last sync")
		return
	case errors.Is(err, common.ErrorValidation):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":      false,
			"error":   "validation failed",
			"details": details(err),
		})
		return
	case errors.Is(err, common.ErrMalformedInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		h.logger.Error(r.Context(), "failed to save document", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"message":       fmt.Sprintf("saved version %s", res.Version),
		"version":       res.Version,
		"last_modified": res.ModifiedAt.UTC().Format(TimeLayout),
		"backup_id":     res.BackupID,
	})
}

func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	list, err := h.docs.ListBackups(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "failed to list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]map[string]any, 0, len(list))
	for _, b := range list {
		out = append(out, map[string]any{
			"id":          b.ID,
			"version":     b.Version,
			"modified_at": b.ModifiedAt.UTC().Format(TimeLayout),
			"modified_by": b.ModifiedBy,
			"created_at":  b.CreatedAt.UTC().Format(TimeLayout),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"backups": out})
}

// IssueToken mints a token for {"email": ...}. Only callers on the server's
// own host may ask; the address is taken from the connection, never from
// forwarding headers.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r.RemoteAddr) {
		writeError(w, http.StatusForbidden, "tokens can only be requested from the server host")
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4096))
	if err != nil || !gjson.ValidBytes(raw) {
		writeError(w, http.StatusBadRequest, "body must be a JSON object with an email")
		return
	}
	email := gjson.GetBytes(raw, "email").String()

	token, err := h.tokens.Issue(r.Context(), email)
	if err != nil {
		if errors.Is(err, common.ErrMalformedInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error(r.Context(), "failed to issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.logger.Info(r.Context(), "token issued", "email", email)
	writeJSON(w, http.StatusOK, map[string]any{"email": email, "token": token})
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// precondition reads X-Client-Modified-At, falling back to
// If-Unmodified-Since. No header means an unconditional save.
func precondition(r *http.Request) (*time.Time, error) {
	v := r.Header.Get(HeaderClientModifiedAt)
	name := HeaderClientModifiedAt
	if v == "" {
		v, name = r.Header.Get(HeaderIfUnmodifiedSince), HeaderIfUnmodifiedSince
	}
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{TimeLayout, time.RFC3339, http.TimeFormat} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid %s header %q", name, v)
}

func details(err error) []string {
	var me *multierror.Error
	if !errors.As(err, &me) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(me.Errors))
	for _, e := range me.Errors {
		out = append(out, e.Error())
	}
	return out
}
