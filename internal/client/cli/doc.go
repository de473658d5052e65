// Package cli provides the interactive cake library terminal client.
//
// It wires configuration, durable session storage, the API client, the
// session and the route table into a REPL. Navigation (`go <path>`) runs the
// route guard first, exactly like a router's before-each hook. A background
// watcher follows session changes made by other client processes sharing the
// same storage, and re-guards the current route when the session ends.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
