//go:build oxydebug

package common

const Debug = true
