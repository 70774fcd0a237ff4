// Package app is the composition root for booth.
//
// Wire builds one Authenticator over the credential store and hands it to
// two apiclient.Clients, one per remote service, so bearer injection and the
// 401 refresh protocol are shared. The state.Store is seeded with the
// persisted access token, the session and studio controllers are layered on
// top, and a failed refresh is routed to session.Controller.Expire.
//
// Run adds the ambient pieces (config, file logging, preferences), optionally
// starts the background poller and then blocks in ui.Run.
//
// # Polling
//
// With -poll N the poller re-lists studios every N seconds using the filters
// currently chosen in the UI. It does nothing while logged out. Consecutive
// failures double the wait, capped at 30s, and are counted in the store so
// the header can show an offline badge. A session expiry during a poll is
// left to the session controller.
package app
