// Package driving defines the interfaces through which the outside
// world drives the core (primary/inbound ports).
//
// The CLI adapter calls these; core services implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driving
