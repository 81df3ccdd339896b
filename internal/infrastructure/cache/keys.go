package cache

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTTL bounds staleness when an invalidation is lost
const DefaultTTL = 10 * time.Minute

// Key scheme: kind + scope + filters, deterministic so the same read
// always consults the same entry.
//
//	payments:client:<clientID>   - a client's full payment projection
//	payments:ledger:<ledgerID>   - one ledger row projection
//	summary:client:<clientID>    - the pre-aggregated dashboard view
const (
	clientPaymentsPrefix = "payments:client:"
	ledgerPrefix         = "payments:ledger:"
	clientSummaryPrefix  = "summary:client:"
)

// ClientPaymentsKey is the list key for one client's payments
func ClientPaymentsKey(clientID uuid.UUID) string {
	return clientPaymentsPrefix + clientID.String()
}

// LedgerKey is the point key for one ledger row
func LedgerKey(ledgerID uuid.UUID) string {
	return ledgerPrefix + ledgerID.String()
}

// ClientSummaryKey is the key for a client's aggregate view
func ClientSummaryKey(clientID uuid.UUID) string {
	return clientSummaryPrefix + clientID.String()
}

// MutationKeys lists the point keys any payment mutation invalidates
func MutationKeys(ledgerID, clientID uuid.UUID) []string {
	return []string{
		LedgerKey(ledgerID),
		ClientPaymentsKey(clientID),
		ClientSummaryKey(clientID),
	}
}

// ClientFamilyPrefixes lists the prefix-scanned families that hold
// derived data for one client (filtered list variants, aggregates), all
// of which a mutation against that client could make stale
func ClientFamilyPrefixes(clientID uuid.UUID) []string {
	return []string{
		clientPaymentsPrefix + clientID.String(),
		clientSummaryPrefix + clientID.String(),
	}
}
