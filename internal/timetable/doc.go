// Package timetable provides an HTTP client for the tournament timetable
// search service.
//
// # Overview
//
// The search service runs a long combinatorial search that produces candidate
// schedules for one tour of a tournament. This package mirrors its JSON
// contract and offers a typed client for the session endpoints (start, stop,
// status, solutions), the spreadsheet export and the administrative record
// endpoints.
//
// # Architecture
//
//   - client.go: HTTP client, request headers and error wrapping
//   - types.go: wire types, including the order-preserving FieldSchedule
//   - entity.go: the closed set of administrative record variants
//
// # Client Usage
//
//	client, err := timetable.NewClient("127.0.0.1:8899", timetable.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	status, err := client.FetchStatus(ctx, true)
//
// # API Endpoints
//
//   - POST /search-start: launch a search, returns the first solutions and session data
//   - POST /search-stop: cancel the running search
//   - GET /status[?with-data=1]: job status, attempts and solution count
//   - GET /get-solutions: every solution found so far
//   - GET /download-solution?hash=: spreadsheet export of one solution
//   - POST /save-entity, /del-entity?tag=&id=: administrative records
//
// # Request Handling
//
// Every request carries Accept, User-Agent and a fresh X-Request-ID, and is
// logged at debug level with its duration. The default transport has no
// timeout: a search start may legitimately take a while, so callers bound
// calls through ctx.
//
// # Error Handling
//
// Non-2xx responses become "api <path> returned status <code>". Transport and
// decoding failures are wrapped with "execute request" and "decode response".
// A record call answered with result=false surfaces as *ServerError carrying
// the server's message unchanged.
//
// # Field Order
//
// Solutions encode their games as a JSON object keyed by field name. The
// service emits fields in a meaningful order, so FieldSchedule decodes the
// object token by token and keeps that order instead of going through a map.
package timetable
