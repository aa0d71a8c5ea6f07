package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/marcus/notif/internal/actions"
	"github.com/marcus/notif/internal/models"
	"github.com/marcus/notif/internal/selection"
)

// NotificationResponse is a notification plus the bundle default it would
// fall back to, which is what the edit form needs to open.
type NotificationResponse struct {
	models.Notification
	DefaultActions []models.Action `json:"default_actions"`
}

// CreateBehaviorGroupRequest is the body of POST /bundles/{id}/behaviorGroups.
type CreateBehaviorGroupRequest struct {
	DisplayName string              `json:"displayName"`
	Actions     []models.WireAction `json:"actions"`
}

// errBadBehavior marks request bodies rejected by the behavior editor
var errBadBehavior = errors.New("invalid behavior")

// decodeJSON reads a JSON body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// editBehavior drives state through the submitted behavior and checks the
// result is storable.
func (s *Server) editBehavior(state selection.State, b models.Behavior) (selection.State, error) {
	lookup, err := s.store.IntegrationLookup()
	if err != nil {
		return state, err
	}
	state, err = selection.ApplyBehavior(state, b, lookup)
	if err != nil {
		if errors.Is(err, actions.ErrInvalidState) || errors.Is(err, actions.ErrIndexOutOfRange) {
			return state, err
		}
		return state, fmt.Errorf("%w: %v", errBadBehavior, err)
	}

	if err := state.Validate(lookup); err != nil {
		return state, fmt.Errorf("%w: %v", errBadBehavior, err)
	}
	return state, nil
}

// writeEditError reports a rejected behavior edit
func writeEditError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, errBadBehavior) {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	writeStoreError(w, r, op, err)
}

func (s *Server) handleListBundles(w http.ResponseWriter, r *http.Request) {
	bundles, err := s.store.ListBundles()
	if err != nil {
		writeStoreError(w, r, "list bundles", err)
		return
	}
	if bundles == nil {
		bundles = []models.Facet{}
	}
	writeJSON(w, http.StatusOK, bundles)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.store.GetBundle(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, "get bundle", err)
		return
	}
	list, err := s.store.ListNotifications(bundle.ID, r.URL.Query().Get("app"))
	if err != nil {
		writeStoreError(w, r, "list notifications", err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetNotification(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.GetNotification(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, "get notification", err)
		return
	}
	d, err := s.store.GetDefaultBehavior(n.BundleID)
	if err != nil {
		writeStoreError(w, r, "get default behavior", err)
		return
	}
	writeJSON(w, http.StatusOK, NotificationResponse{Notification: *n, DefaultActions: d.Actions})
}

func (s *Server) handleSaveNotificationBehavior(w http.ResponseWriter, r *http.Request) {
	var body models.Behavior
	if !decodeJSON(w, r, &body) {
		return
	}

	n, err := s.store.GetNotification(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, "get notification", err)
		return
	}
	d, err := s.store.GetDefaultBehavior(n.BundleID)
	if err != nil {
		writeStoreError(w, r, "get default behavior", err)
		return
	}

	state, err := s.editBehavior(selection.NewForNotification(*n, d.Actions), body)
	if err != nil {
		writeEditError(w, r, "edit behavior", err)
		return
	}
	if err := s.store.SaveNotificationBehavior(n.ID, state.Submit()); err != nil {
		writeStoreError(w, r, "save behavior", err)
		return
	}
	s.metrics.RecordBehaviorSaved()
	logFor(r.Context()).Info("behavior saved", "notification", n.ID, "mode", state.Mode().String())

	saved, err := s.store.GetNotification(n.ID)
	if err != nil {
		writeStoreError(w, r, "get notification", err)
		return
	}
	writeJSON(w, http.StatusOK, NotificationResponse{Notification: *saved, DefaultActions: d.Actions})
}

func (s *Server) handleGetDefaults(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.store.GetBundle(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, "get bundle", err)
		return
	}
	d, err := s.store.GetDefaultBehavior(bundle.ID)
	if err != nil {
		writeStoreError(w, r, "get default behavior", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleSaveDefaults(w http.ResponseWriter, r *http.Request) {
	var body models.Behavior
	if !decodeJSON(w, r, &body) {
		return
	}

	bundle, err := s.store.GetBundle(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, "get bundle", err)
		return
	}
	d, err := s.store.GetDefaultBehavior(bundle.ID)
	if err != nil {
		writeStoreError(w, r, "get default behavior", err)
		return
	}

	state, err := s.editBehavior(selection.NewForDefault(*d), body)
	if err != nil {
		writeEditError(w, r, "edit default behavior", err)
		return
	}
	if err := s.store.SaveDefaultBehavior(bundle.ID, state.Submit().Actions); err != nil {
		writeStoreError(w, r, "save default behavior", err)
		return
	}
	s.metrics.RecordBehaviorSaved()

	saved, err := s.store.GetDefaultBehavior(bundle.ID)
	if err != nil {
		writeStoreError(w, r, "get default behavior", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleListBehaviorGroups(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.store.GetBundle(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, "get bundle", err)
		return
	}
	groups, err := s.store.ListBehaviorGroups(bundle.ID)
	if err != nil {
		writeStoreError(w, r, "list behavior groups", err)
		return
	}
	if groups == nil {
		groups = []models.BehaviorGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleCreateBehaviorGroup(w http.ResponseWriter, r *http.Request) {
	var body CreateBehaviorGroupRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.DisplayName == "" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "displayName is required")
		return
	}

	bundle, err := s.store.GetBundle(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, "get bundle", err)
		return
	}

	// Groups are edited with the same form as a bundle default
	state, err := s.editBehavior(selection.NewForDefault(models.DefaultBehavior{BundleID: bundle.ID}), models.Behavior{Actions: body.Actions})
	if err != nil {
		writeEditError(w, r, "edit behavior group", err)
		return
	}
	g, err := s.store.CreateBehaviorGroup(bundle.ID, body.DisplayName, state.Submit().Actions)
	if err != nil {
		writeStoreError(w, r, "create behavior group", err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleDeleteBehaviorGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBehaviorGroup(r.PathValue("id")); err != nil {
		writeStoreError(w, r, "delete behavior group", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
