// Package realtime pushes domain events to connected clients over websockets.
//
// A connection is admitted once, at upgrade time, by the Gate using the same
// token validator as the REST API. Admitted connections live in the Registry
// until their read loop exits. The Publisher encodes each event once and
// writes the shared frame to every open connection; a failed write is logged
// and counted but never removes the connection, which is reaped by its own
// read loop.
//
// Delivery is fire-and-forget. Nothing is buffered for disconnected clients.
package realtime
