// Package inspect serves a local HTTP view of a running upload widget.
//
// The inspector exposes the widget's current snapshot and view model as
// JSON, streams every transition over a WebSocket, and serves the upload
// metrics in the Prometheus text format.
//
// # Usage
//
//	srv := inspect.New(widget, inspect.WithGatherer(registry))
//	addr, err := srv.Start("localhost:7070")
//	if err != nil {
//	    return err
//	}
//	defer srv.Shutdown(context.Background())
//
// Feed messages are JSON objects:
//
//	{"type":"state","state":{...},"view":{...}}
//	{"type":"closed"}
package inspect
