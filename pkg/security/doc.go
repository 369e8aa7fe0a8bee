// Package security provides the validation gate for CodeShift.
//
// Nothing in CodeShift touches the filesystem or compiles a migration
// pattern before it has passed through this package.
//
// # Path Guard
//
// The PathGuard prevents directory traversal attacks when processing
// user-provided file paths. It provides defense-in-depth with multiple
// validation layers:
//
//   - Lexical validation: length limits, control characters, and a fixed
//     denylist of dangerous substrings ("..", "~", shell metacharacters,
//     Windows drive and UNC forms)
//   - Extension allowlist: only known source/text/config extensions pass
//   - Symbolic link resolution: all symlinks resolved to real paths
//   - Containment verification: the resolved path must stay within the
//     base directory
//
// # Pattern Validator
//
// ValidatePattern statically checks a code fragment before it is ever
// used to drive a transformation: size limits, a case-insensitive
// denylist of dynamic-execution and introspection primitives, a denylist
// of high-risk module imports, and a full Python parse. The denylist
// scan is intentionally naive (plain substring match, not token-aware):
// it trades false positives for a conservative safety net. It is a
// defense-in-depth layer, not a sandbox.
//
// # Errors
//
// Every rejection is an *Error carrying an enumerated Reason plus a
// human-readable detail, so callers can branch on the reason code
// instead of matching message text:
//
//	if err := security.ValidatePattern(pattern); err != nil {
//	    if security.IsReason(err, security.ReasonForbiddenKeyword) {
//	        // ...
//	    }
//	}
//
// # Thread Safety
//
// The validators are pure functions of their inputs plus fixed
// configuration tables; all types in this package are safe for
// concurrent use by multiple goroutines.
package security
