package auth

import (
	"net/http"
	"sync"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/bookmarks/internal/logger"
)

// HeaderSession carries the session token in a request/response header
// instead of a cookie, which suits non-browser API clients.
type HeaderSession struct {
	sessions *scs.SessionManager
	header   string
	log      logger.Logger
}

func NewHeaderSession(sm *scs.SessionManager, header string, log logger.Logger) *HeaderSession {
	return &HeaderSession{sessions: sm, header: header, log: log}
}

// LoadAndSave loads the session named by the request header and commits any
// change before the first byte of the response is written, echoing the
// (possibly new) token back in the same header.
func (h *HeaderSession) LoadAndSave(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", h.header)

		ctx, err := h.sessions.Load(r.Context(), r.Header.Get(h.header))
		if err != nil {
			h.log.Error("load session", logger.Error(err))
			http.Error(w, "session error", http.StatusInternalServerError)
			return
		}
		sr := r.WithContext(ctx)

		cw := &committingWriter{ResponseWriter: w}
		cw.commit = func() bool { return h.commit(w, sr) }

		next.ServeHTTP(cw, sr)
		if !cw.wroteHeader {
			cw.WriteHeader(http.StatusOK)
		}
	})
}

func (h *HeaderSession) commit(w http.ResponseWriter, r *http.Request) bool {
	switch h.sessions.Status(r.Context()) {
	case scs.Modified:
		token, _, err := h.sessions.Commit(r.Context())
		if err != nil {
			h.log.Error("commit session", logger.Error(err))
			return false
		}
		w.Header().Set(h.header, token)
	case scs.Destroyed:
		w.Header().Set(h.header, "")
	}
	return true
}

// committingWriter runs commit exactly once, just before headers go out. If
// the commit fails the response is replaced by a 500.
type committingWriter struct {
	http.ResponseWriter
	commit      func() bool
	once        sync.Once
	wroteHeader bool
	failed      bool
}

func (cw *committingWriter) WriteHeader(status int) {
	cw.once.Do(func() {
		cw.wroteHeader = true
		if !cw.commit() {
			cw.failed = true
			http.Error(cw.ResponseWriter, "session error", http.StatusInternalServerError)
			return
		}
		cw.ResponseWriter.WriteHeader(status)
	})
}

func (cw *committingWriter) Write(b []byte) (int, error) {
	cw.WriteHeader(http.StatusOK)
	if cw.failed {
		return len(b), nil
	}
	return cw.ResponseWriter.Write(b)
}

func (cw *committingWriter) Unwrap() http.ResponseWriter { return cw.ResponseWriter }
