/**
 * @description
 * The account directory is a flattened, ordered view of the nested
 * user -> accountType -> account snapshot. It is built once per installed
 * snapshot and then only read, so lookups never traverse the nested
 * structure again.
 */

package app

import "github.com/sbf/dashboard-service/internal/domain"

// DirectoryEntry pairs an account with the account type that owns it.
type DirectoryEntry struct {
	Account     domain.Account
	AccountType domain.AccountType
}

// Directory is an ordered lookup table over every account in a snapshot.
// Iteration order preserves the snapshot's account-type order and, within a
// type, its account order.
type Directory struct {
	entries []DirectoryEntry
	index   map[string]int
}

// BuildDirectory flattens the user snapshot into a Directory. A nil user
// yields an empty directory. If an account id appears under more than one
// account type (which violates the data model), the first occurrence wins.
func BuildDirectory(user *domain.User) *Directory {
	dir := &Directory{index: make(map[string]int)}
	if user == nil {
		return dir
	}
	for _, accountType := range user.AccountTypes {
		at := accountType
		// Entries do not carry the nested account list twice.
		at.Accounts = nil
		for _, account := range accountType.Accounts {
			if _, exists := dir.index[account.ID]; exists {
				continue
			}
			dir.index[account.ID] = len(dir.entries)
			dir.entries = append(dir.entries, DirectoryEntry{Account: account, AccountType: at})
		}
	}
	return dir
}

// Entries returns the flattened accounts in snapshot order.
func (d *Directory) Entries() []DirectoryEntry {
	if d == nil {
		return nil
	}
	return d.entries
}

// Lookup finds the entry for an account id. The boolean is false when the id
// is not present in the snapshot.
func (d *Directory) Lookup(accountID string) (DirectoryEntry, bool) {
	if d == nil || accountID == "" {
		return DirectoryEntry{}, false
	}
	i, ok := d.index[accountID]
	if !ok {
		return DirectoryEntry{}, false
	}
	return d.entries[i], true
}

// Len returns the number of accounts in the directory.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}
