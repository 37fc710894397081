package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"intakeform/pkg/form"
	"intakeform/pkg/state"
	"intakeform/pkg/submit"
)

const sessionKey = "session"

const maxPatchBytes = 1 << 20

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

type errorResponse struct {
	Error string `json:"error"`
}

type setFieldRequest struct {
	Value form.Value `json:"value"`
}

type toggleRequest struct {
	Option string `json:"option" binding:"required"`
}

type submitResponse struct {
	Outcome submit.Outcome `json:"outcome"`
	Session state.View     `json:"session"`
}

func abort(c *gin.Context, status int, format string, args ...any) {
	c.AbortWithStatusJSON(status, errorResponse{Error: fmt.Sprintf(format, args...)})
}

// withSession resolves the live session named by :id.
func (s *Server) withSession(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		sess, ok := s.store.Get(id)
		if !ok {
			abort(c, http.StatusNotFound, "session '%s' not found", id)
			return
		}
		c.Set(sessionKey, sess)
		next(c)
	}
}

func sessionFrom(c *gin.Context) *state.Session {
	return c.MustGet(sessionKey).(*state.Session)
}

func (s *Server) describeForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sections": s.forms.Describe(),
		"metadata": s.forms.Metadata,
	})
}

func (s *Server) createSession(c *gin.Context) {
	sess, _ := s.store.GetOrCreate(c.Request.Context(), uuid.NewString())
	c.JSON(http.StatusCreated, sess.View())
}

// openSession starts the session when it is not live yet, otherwise resumes it.
func (s *Server) openSession(c *gin.Context) {
	id := c.Param("id")
	if !sessionIDPattern.MatchString(id) {
		abort(c, http.StatusBadRequest, "invalid session id")
		return
	}
	sess, created := s.store.GetOrCreate(c.Request.Context(), id)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, sess.View())
}

func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c).View())
}

func (s *Server) fieldParam(c *gin.Context) (form.Field, bool) {
	id := form.FieldID(c.Param("field"))
	f, ok := form.Lookup(id)
	if !ok {
		abort(c, http.StatusNotFound, "unknown field '%s'", id)
		return form.Field{}, false
	}
	return f, true
}

func (s *Server) setField(c *gin.Context) {
	f, ok := s.fieldParam(c)
	if !ok {
		return
	}
	var req setFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request: %v", err)
		return
	}
	if !s.forms.AllowsValue(f.ID, req.Value) {
		abort(c, http.StatusUnprocessableEntity, "value is not an option of '%s'", f.ID)
		return
	}
	sess := sessionFrom(c)
	if err := sess.SetField(f.ID, req.Value); err != nil {
		writeFieldError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

func (s *Server) toggleOption(c *gin.Context) {
	f, ok := s.fieldParam(c)
	if !ok {
		return
	}
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request: %v", err)
		return
	}
	if f.Kind.IsSet() && !s.forms.AllowsValue(f.ID, form.Options(req.Option)) {
		abort(c, http.StatusUnprocessableEntity, "'%s' is not an option of '%s'", req.Option, f.ID)
		return
	}
	sess := sessionFrom(c)
	if err := sess.ToggleOption(f.ID, req.Option); err != nil {
		writeFieldError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// touchField reveals feedback for a field without validating it.
func (s *Server) touchField(c *gin.Context) {
	f, ok := s.fieldParam(c)
	if !ok {
		return
	}
	sess := sessionFrom(c)
	if err := sess.MarkInteracted(f.ID); err != nil {
		writeFieldError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

func (s *Server) blurField(c *gin.Context) {
	f, ok := s.fieldParam(c)
	if !ok {
		return
	}
	sess := sessionFrom(c)
	if err := sess.Blur(f.ID); err != nil {
		writeFieldError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// patchSession applies an RFC 7386 merge patch to the snapshot and routes
// every changed field through SetField, in catalogue order.
func (s *Server) patchSession(c *gin.Context) {
	sess := sessionFrom(c)
	patch, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPatchBytes))
	if err != nil {
		abort(c, http.StatusBadRequest, "read body: %v", err)
		return
	}

	current := sess.Snapshot()
	currentJSON, err := sonic.ConfigStd.Marshal(current)
	if err != nil {
		abort(c, http.StatusInternalServerError, "encode snapshot: %v", err)
		return
	}
	mergedJSON, err := jsonpatch.MergePatch(currentJSON, patch)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid merge patch: %v", err)
		return
	}
	var merged form.Snapshot
	if err := sonic.ConfigStd.Unmarshal(mergedJSON, &merged); err != nil {
		abort(c, http.StatusBadRequest, "patch would produce an invalid form: %v", err)
		return
	}

	for _, f := range form.Fields() {
		next := merged.Get(f.ID)
		if current.Get(f.ID).Equal(next) {
			continue
		}
		if !s.forms.AllowsValue(f.ID, next) {
			abort(c, http.StatusUnprocessableEntity, "value is not an option of '%s'", f.ID)
			return
		}
	}
	for _, f := range form.Fields() {
		next := merged.Get(f.ID)
		if current.Get(f.ID).Equal(next) {
			continue
		}
		if err := sess.SetField(f.ID, next); err != nil {
			writeFieldError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, sess.View())
}

func (s *Server) resetSession(c *gin.Context) {
	sess := sessionFrom(c)
	sess.Reset()
	c.JSON(http.StatusOK, sess.View())
}

func (s *Server) submitSession(c *gin.Context) {
	sess := sessionFrom(c)
	outcome, err := s.orchestrator.Submit(c.Request.Context(), sess)
	switch {
	case errors.Is(err, submit.ErrSubmitInFlight):
		abort(c, http.StatusConflict, "a submission is already in progress")
		return
	case err != nil:
		log.Printf("[api.submitSession] Submit for session %s failed: %v", sess.ID, err)
		abort(c, http.StatusInternalServerError, "submission failed")
		return
	}

	status := http.StatusOK
	switch outcome.Status {
	case submit.StatusInvalid:
		status = http.StatusUnprocessableEntity
	case submit.StatusError:
		status = http.StatusBadGateway
	}
	c.JSON(status, submitResponse{Outcome: outcome, Session: sess.View()})
}

func writeFieldError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, state.ErrUnknownField):
		abort(c, http.StatusNotFound, "%v", err)
	case errors.Is(err, state.ErrFieldKindMismatch):
		abort(c, http.StatusBadRequest, "%v", err)
	default:
		abort(c, http.StatusInternalServerError, "%v", err)
	}
}
