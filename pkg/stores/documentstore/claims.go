package documentstore

import (
	"errors"
	"fmt"

	"github.com/ostafen/clover/v2"
	"github.com/ostafen/clover/v2/document"
)

type claimRecord struct {
	Kind    string `clover:"kind" json:"kind"`
	OwnerID int    `clover:"ownerId" json:"ownerId"`
}

/*
claim reserves value for owner. It returns false when another record
already holds the value.
*/
func claim(db *clover.DB, kind, value string, owner int) (bool, error) {
	doc := newDocument(claimRecord{Kind: kind, OwnerID: owner}, claimID(kind, value))

	if _, err := db.InsertOne(claimsCollection, doc); err != nil {
		if errors.Is(err, clover.ErrDuplicateKey) {
			return false, nil
		}

		return false, fmt.Errorf("error claiming %s '%s': %w", kind, value, err)
	}

	return true, nil
}

func findClaim(db *clover.DB, kind, value string) (int, bool, error) {
	var (
		err error
		doc *document.Document
	)

	if doc, err = db.FindById(claimsCollection, claimID(kind, value)); err != nil {
		return 0, false, fmt.Errorf("error looking up %s '%s': %w", kind, value, err)
	}

	if doc == nil {
		return 0, false, nil
	}

	return toInt(doc.Get("ownerId")), true, nil
}

func releaseClaim(db *clover.DB, kind, value string) error {
	if err := db.DeleteById(claimsCollection, claimID(kind, value)); err != nil {
		return fmt.Errorf("error releasing %s '%s': %w", kind, value, err)
	}

	return nil
}
