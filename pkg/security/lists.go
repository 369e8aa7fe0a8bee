package security

// The tables below are the complete security configuration of the
// validators. They are exported so they can be unit-tested for
// completeness and extended without touching control flow. Treat them
// as immutable: mutate copies, never the tables themselves.

// ForbiddenKeywords are identifiers associated with dynamic execution,
// dynamic attribute access, namespace introspection, or type
// introspection. Matched as a case-insensitive substring anywhere in a
// pattern, including comments and string literals.
var ForbiddenKeywords = []string{
	"eval", "exec", "compile", "__import__",
	"open", "file", "input", "raw_input",
	"execfile", "reload", "__builtins__",
	"globals()", "locals()", "vars()", "dir()",
	"hasattr", "getattr", "setattr", "delattr",
	"callable", "isinstance", "issubclass",
}

// ForbiddenModules are modules considered high-risk for a migration
// pattern to import: process/OS access, networking, arbitrary-object
// serialization, and concurrency primitives.
var ForbiddenModules = []string{
	"os", "sys", "subprocess", "socket",
	"urllib", "http", "ftplib", "smtplib",
	"pickle", "marshal", "shelve", "dbm",
	"ctypes", "threading", "multiprocessing",
}

// AllowedExtensions is the extension allowlist for the Path Guard.
// Everything not listed here is rejected, which covers all known
// executable and binary extensions without having to enumerate them.
// Keys are lowercase with the leading dot.
var AllowedExtensions = map[string]bool{
	".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".vue": true, ".html": true, ".css": true, ".scss": true, ".less": true,
	".json": true, ".yaml": true, ".yml": true, ".md": true, ".txt": true,
	".xml": true, ".sql": true, ".sh": true, ".bash": true,
}

// SuspiciousExtensions is the denylist used by ValidateFilePath, which
// runs without filesystem context and therefore cannot apply the full
// allowlist semantics of the Path Guard.
var SuspiciousExtensions = []string{
	".exe", ".bat", ".cmd", ".com", ".pif", ".scr",
	".vbs", ".jar", ".app", ".deb", ".rpm",
	".dmg", ".pkg", ".msi", ".dll", ".so", ".dylib",
}

// DangerousPathPatterns are substrings that disqualify a path outright:
// traversal tokens, home-directory shortcuts, shell metacharacters, and
// environment expansion.
var DangerousPathPatterns = []string{
	"..", "~", "$", "`", "|", ";", "&",
}

// ReservedFilenames are operating-system device names that are unsafe
// as filenames regardless of extension. Compared case-insensitively.
var ReservedFilenames = []string{
	"CON", "PRN", "AUX",
	"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
	"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
}

// AllowedMigrationTypes is the fixed allowlist of migration identifiers
// accepted by ValidateMigrationType.
var AllowedMigrationTypes = map[string]bool{
	"react-hooks": true,
	"vue3":        true,
	"python3":     true,
	"typescript":  true,
	"graphql":     true,
	"angular":     true,
	"svelte":      true,
	"nextjs":      true,
	"nuxtjs":      true,
}
