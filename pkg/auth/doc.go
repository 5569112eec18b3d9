// Package auth supplies the authorization capability consumed by the
// upload widget.
//
// The widget never looks authorization up from ambient state. Callers pass
// an Authorizer at construction and the widget asks it on every event:
//
//	w := upload.New(cfg, upload.WithAuthorizer(auth.Static(true)))
//
// # Implementations
//
//   - Static: a fixed answer, useful for tests and CLIs.
//   - Flag: a toggle that can be flipped on sign in / sign out.
//   - Func: adapts any func() bool.
//   - SessionAuthorizer: allows while a session holds an unexpired user
//     stored with Set.
//
// # Sessions
//
//	auth.Set(session, user, time.Now().Add(time.Hour))
//	w := upload.New(cfg, upload.WithAuthorizer(auth.SessionAuthorizer{Session: session}))
//	...
//	auth.Clear(session) // signs out; later offers are ignored
package auth
