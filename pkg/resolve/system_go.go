//go:build !cgo || netgo

package resolve

// See system_libc.go for the build-tag logic.
const SystemResolverName = "Go native (reads /etc/hosts and DNS only; no nsswitch)"
