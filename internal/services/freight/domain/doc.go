// Package domain holds the freight matching entities and their lifecycle rules:
// shipments, forwarder offers, carrier-market listings and bids, and the
// commission entries recorded when a carrier is assigned.
package domain
