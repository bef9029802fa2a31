//go:build !oxydebug

package common

// Debug reports whether precondition checks panic. Build with -tags oxydebug to enable them.
const Debug = false
