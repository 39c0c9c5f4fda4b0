// Package tor routes article fetches through the Tor network.
//
// A walk normally talks to Wikipedia directly. With --tor, philowalk starts
// an embedded Tor daemon (via tornago) and sends every request through its
// SOCKS5 port; with --external-tor it uses a proxy that is already running.
// Either way, Client checks the proxy with a SOCKS5 handshake before the
// first fetch and hands out an *http.Client for the crawler's HTTPFetcher.
//
// Create a Client and pass its HTTP client to the fetcher rather than
// relying on global state.
package tor
