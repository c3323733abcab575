// Package component defines lifecycle-managed services and a registry that
// starts them in order and stops them in reverse.
//
// The httpaccess service and the status server are both components; the
// binary registers them and drives the lifecycle from one place.
//
//   - Component: Start, Stop, Health
//   - Describable: one-line summary for the startup banner
//   - RouteProvider: HTTP routes for the startup banner
package component
