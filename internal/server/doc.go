// Package server contains the HTTP layer of the admin dashboard: routes,
// handlers, the two route gates, and template rendering.
//
// Every page is guarded twice. The edge gate classifies the request from
// the session cookie alone, before any handler runs. The app gate then
// revalidates the credential against the core backend and decides again
// with the settled result. A request only reaches a private handler after
// both gates allow it.
package server
