/* Draft docs:
*
* WHY
* curl and friends do Happy Eyeballs: IPv6 and IPv4 attempts race, so when IPv6 is broken you
* just get a slightly slow answer and no idea why. This does the opposite: one attempt at a time,
* IPv6 first, each out loud, so the fallback can be watched.
*
* CONNECTION
* Logic flow
* * `host` is resolved to every address it has (see DNS)
*   * If it's an IP, it's used as-is and nothing is looked up
* * The addresses are ordered IPv6 first, then IPv4. Within each family, the resolver's order is kept
* * Each one is tried in turn, with `--timeout` (default 2s) to get a TCP connection
*   * Refused/unreachable fail straight away; black holes take the full timeout
*   * A failed attempt is reported, and the next address is tried
* * The first connection made is used; nothing after it is tried
* * If they all fail, the last failure is reported and the exit status is 1. `--history` shows every failure
* * `--strategy=race` instead staggers overlapping attempts by `--stagger`, like curl does. Quicker, but harder to follow
*
* EXCHANGE
* * Over the connection, `GET /` is sent, with `Connection: close`
* * If `--host` is specified, that value is used for the HTTP `Host` header, otherwise `host` is
*   * Per RFC 9110, the port is appended if it's not 80
*   * Setting `--host` never has any effect on the connection target
* * The first line of the response is printed. Only `--read-limit` bytes are read looking for it
*
* DNS
* * By default names are resolved with the Go standard library, as any Go program would
*   * Of particular note is whether Go is using its own native-Go resolution code, or libc's `getaddrinfo()` via _CGO_. The details are complicated, but some pertinent info
*     * Go-native only looks in DNS, and `/etc/hosts`, but not NIS/LDAP/etc. It can't parse all `/etc/resolv.conf` options
*     * CGO is at the whim of `nsswitch.conf` etc etc
*   * Which one is in use is printed with `--summary`
* * `--dns-mode=manual` sends A and AAAA queries straight to the servers in `--resolv-conf`, bypassing all that
* * `--resolve name=addr,addr` gives fixed addresses for a name, like curl's option of the same name. Good for testing a new server before DNS points at it
* * `--dns-full` additionally prints what DNS itself says (CNAMEs, server, TTL, DNSSEC validity)
*   * This is purely informative; it never changes what's connected to
 */
package main
