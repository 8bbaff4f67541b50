// Package hazard implements a generic hazard-pointer safe-memory-reclamation
// scheme: a grow-only hazard slot registry shared across all goroutines
// touching a given Domain, and a per-Reclaimer retire set that stages
// detached nodes until no slot in the registry still publishes them.
//
// A Domain is parameterized over the node type T it protects. Goroutines
// that intend to dereference shared nodes join the domain via Join, which
// hands back a *Reclaimer; Protect publishes a hazard covering whatever a
// source atomic pointer currently holds, Retire stages a detached node for
// deferred deletion, and Close runs the thread-exit drain (the one blocking
// operation in the package).
package hazard
