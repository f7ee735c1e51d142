//go:build cgo && !netgo

package resolve

/* There's no API saying which lookup code net.Resolver will end up in, so mirror the linker:
* libc is used iff cgo is on and netgo hasn't been asked for. CGO_ENABLED=0 doesn't set netgo,
* hence checking both.
*
*         netgo  !netgo
* cgo     go     libc
* !cgo    go     go
 */

const SystemResolverName = "CGO (system's libc's getaddrinfo(), which will honour nsswitch config)"
