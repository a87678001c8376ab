// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import "github.com/google/uuid"

// DeriveID reproduces the scraper's record-id derivation: a version-3
// UUID over the source URL in the URL namespace. Fixtures and tooling use
// it so their ids line up with real snapshots (prd001-corpus R2.4).
func DeriveID(url string) string {
	return uuid.NewMD5(uuid.NameSpaceURL, []byte(url)).String()
}
