package session

import (
	"context"
	"log/slog"
	"net/http"
)

// Middleware binds the session lifecycle to the request boundary. It loads
// (or freshly creates) the session before the handler runs and attaches it
// to the request context; the session is saved and the cookie (re)issued
// just before the first response byte, or after the handler returns if it
// never wrote.
//
// A store fault on load fails the request with 500: the handler never runs
// without a usable session. A save fault that happens before any response
// byte also yields 500; once the body has started the fault can only be
// logged.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Load(r.Context(), r)
		if err != nil {
			m.log.Error("session load failed", slog.Any("error", err))
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}

		sw := &sessionWriter{
			ResponseWriter: w,
			manager:        m,
			sess:           sess,
			ctx:            r.Context(),
		}

		next.ServeHTTP(sw, r.WithContext(WithSession(r.Context(), sess)))

		// Handler produced no output; persist the session anyway so the
		// idle timer advances and net/http emits 200 with the cookie set.
		sw.finish()
	})
}

// sessionWriter defers session persistence until the response commits,
// because Set-Cookie must precede the first body byte.
type sessionWriter struct {
	http.ResponseWriter
	manager *Manager
	sess    *Session
	ctx     context.Context
	done    bool
	failed  bool
}

func (w *sessionWriter) WriteHeader(code int) {
	w.finish()
	if w.failed {
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.finish()
	if w.failed {
		// Swallow the handler's body; the error response is already out.
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap supports http.ResponseController.
func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *sessionWriter) finish() {
	if w.done {
		return
	}
	w.done = true

	if err := w.sess.Save(w.ctx); err != nil {
		w.manager.log.Error("session save failed",
			slog.String("session_id", w.sess.ID()),
			slog.Any("error", err),
		)
		w.failed = true
		http.Error(w.ResponseWriter, "session unavailable", http.StatusInternalServerError)
		return
	}

	if err := w.manager.transport.SetToken(w.ResponseWriter, w.sess.ID()); err != nil {
		w.manager.log.Error("failed to issue session cookie",
			slog.String("session_id", w.sess.ID()),
			slog.Any("error", err),
		)
	}
}
