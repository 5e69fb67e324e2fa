// Package endpoint implements the MCP request/notification dispatch table, a
// method-name-keyed map of handlers built the way the teacher's router
// package built its Route/Router pair, generalized to the full method set
// spec §4.4.3 names for both server and client roles.
// file: internal/endpoint/dispatch.go
package endpoint

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mcpcore/mcpcore/internal/mcperr"
)

// requestHandler answers a request with a result or an error.
type requestHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// notificationHandler reacts to a notification; any returned error is logged
// only, since notifications never produce a response.
type notificationHandler func(ctx context.Context, params json.RawMessage) error

// route pairs a method name with whichever of the two handler shapes it expects.
type route struct {
	method       string
	request      requestHandler
	notification notificationHandler
}

// dispatchTable is the method-name-keyed lookup an Endpoint consults for
// every inbound request/notification.
type dispatchTable struct {
	mu     sync.RWMutex
	routes map[string]route
}

func newDispatchTable() *dispatchTable {
	return &dispatchTable{routes: make(map[string]route)}
}

func (d *dispatchTable) addRequest(method string, h requestHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.routes[method]
	r.method = method
	r.request = h
	d.routes[method] = r
}

func (d *dispatchTable) addNotification(method string, h notificationHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.routes[method]
	r.method = method
	r.notification = h
	d.routes[method] = r
}

// dispatchRequest runs the registered request handler for method, or
// MethodNotFound if nothing is registered.
func (d *dispatchTable) dispatchRequest(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	d.mu.RLock()
	r, ok := d.routes[method]
	d.mu.RUnlock()

	if !ok || r.request == nil {
		return nil, mcperr.NewMethodNotFound(method)
	}
	return r.request(ctx, params)
}

// dispatchNotification runs the registered notification handler for method.
// An unregistered notification method is silently ignored per spec §4.4.1:
// notifications carry no id, so there is no channel to report the failure on.
func (d *dispatchTable) dispatchNotification(ctx context.Context, method string, params json.RawMessage) error {
	d.mu.RLock()
	r, ok := d.routes[method]
	d.mu.RUnlock()

	if !ok || r.notification == nil {
		return nil
	}
	return r.notification(ctx, params)
}
