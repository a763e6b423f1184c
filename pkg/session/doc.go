// Package session implements server-side session management for stateful
// web requests backed by a MongoDB document store.
//
// All session data stays server-side; clients hold only an opaque 256-bit
// random token in a cookie, using the URL-safe base64 alphabet. The design
// provides:
//
//  1. Authenticity. Tokens come from crypto/rand and cannot be forged or
//     guessed; the lexical shape of a presented token is validated before
//     any store lookup.
//
//  2. Revocation. Sessions can be revoked individually via Session.Expire,
//     or as a group via ExpireMatching to kill every session belonging to
//     a user. Revocation is permanent per token: an expired document is
//     never reverted and a revoked token can never be resumed.
//
//  3. Rotation. When a session crosses a privilege boundary (login,
//     elevation), Session.Rotate revokes the old token and moves the data
//     under a fresh one.
//
//  4. Idle expiry. A session idle longer than the configured timeout is
//     expired automatically on its next use and a new session is issued.
//
// # Basic usage
//
// Wire the manager once at process start and share it:
//
//	db, err := mongo.NewWithDatabase(ctx, mongoCfg, "app")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	store := session.NewMongoStore(db, "sessions")
//	if err := store.EnsureIndexes(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	manager, err := session.NewFromConfig(cfg, session.WithStore(store))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("/", homeHandler)
//	http.ListenAndServe(":8080", manager.Middleware(mux))
//
// Handlers read and write the session as a key/value mapping:
//
//	func homeHandler(w http.ResponseWriter, r *http.Request) {
//		sess := session.MustFromContext(r.Context())
//
//		visits, _ := sess.GetInt("visits")
//		sess.Set("visits", visits+1)
//	}
//
// The middleware persists the session and (re)issues the cookie when the
// response commits; handlers never save explicitly.
//
// # Login and logout
//
//	func login(w http.ResponseWriter, r *http.Request) {
//		sess := session.MustFromContext(r.Context())
//
//		userID := verifyCredentials(r) // application's concern
//
//		// Crossing a privilege boundary: revoke the anonymous token,
//		// keep the data under a fresh one.
//		if err := sess.Rotate(r.Context()); err != nil {
//			http.Error(w, "login failed", http.StatusInternalServerError)
//			return
//		}
//		sess.Set("user_id", userID.String())
//	}
//
//	func logout(w http.ResponseWriter, r *http.Request) {
//		sess := session.MustFromContext(r.Context())
//		_ = sess.Expire(r.Context())
//	}
//
// On a password change, revoke every session of the affected user:
//
//	n, err := manager.ExpireMatching(ctx, session.Filter{"data.user_id": id})
//
// # Failure model
//
// A missing, malformed, unknown, revoked, or idle-expired token is never an
// error: the client silently receives a fresh empty session and a new
// cookie. Only store faults surface as errors, and the middleware fails
// such requests with 500 rather than degrading silently.
//
// # Concurrency
//
// A Session is scoped to one request and is not safe for sharing across
// goroutines. Concurrent requests presenting the same token are not
// coordinated: saves are last-write-wins full-document replaces, so one
// side's payload writes can be lost. This is a documented property of the
// store contract, not a bug.
package session
