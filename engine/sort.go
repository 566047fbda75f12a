package engine

import "sort"

// sortAccountsByClientID sorts in place by ascending ClientID, used by
// Engine.AccountsOrdered for deterministic output.
func sortAccountsByClientID(accounts []ClientAccount) {
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ClientID < accounts[j].ClientID
	})
}
