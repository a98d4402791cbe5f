/*
Package documentstore implements the store contracts on an embedded clover
document database. Each record is addressed by a document id derived from
its natural key, so clover's duplicate key check on insert enforces
uniqueness and single-document updates run in one clover transaction.
*/
package documentstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ostafen/clover/v2"
	"github.com/ostafen/clover/v2/document"
)

const (
	usersCollection    = "users"
	photosCollection   = "photos"
	albumsCollection   = "albums"
	sessionsCollection = "sessions"

	// claimsCollection holds secondary unique keys such as email addresses
	// and album names. Each claim points back at the record that owns it.
	claimsCollection = "claims"
)

var collections = []string{
	usersCollection,
	photosCollection,
	albumsCollection,
	sessionsCollection,
	claimsCollection,
}

/*
Open opens (or creates) the clover database in dir and makes sure every
collection exists.
*/
func Open(dir string) (*clover.DB, error) {
	var (
		err    error
		db     *clover.DB
		exists bool
	)

	if db, err = clover.Open(dir); err != nil {
		return nil, fmt.Errorf("error opening document database in '%s': %w", dir, err)
	}

	for _, name := range collections {
		if exists, err = db.HasCollection(name); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("error checking collection '%s': %w", name, err)
		}

		if exists {
			continue
		}

		if err = db.CreateCollection(name); err != nil && !errors.Is(err, clover.ErrCollectionExist) {
			_ = db.Close()
			return nil, fmt.Errorf("error creating collection '%s': %w", name, err)
		}
	}

	return db, nil
}

/*
documentID maps a natural key to a stable clover document id.
*/
func documentID(kind string, key any) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("mediacatalog:%s/%v", kind, key))).String()
}

func claimID(kind, value string) string {
	return documentID("claim-"+kind, strings.ToLower(strings.TrimSpace(value)))
}

func newDocument(record any, id string) *document.Document {
	doc := document.NewDocumentOf(record)
	doc.Set(document.ObjectIdField, id)
	return doc
}

/*
toInt reads a numeric field. Documents come back from storage with
integers in whatever width the encoder picked.
*/
func toInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	}

	return 0
}

func toInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	}

	return int64(toInt(value))
}

func toStrings(value any) []string {
	items, _ := value.([]any)
	result := make([]string, 0, len(items))

	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}

	return result
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}

	return time.UnixMilli(ms).UTC()
}

func sortByID[T any](items []T, id func(T) int) {
	slices.SortFunc(items, func(a, b T) int {
		return id(a) - id(b)
	})
}

/*
checkContext refuses to start a store call whose context is already
cancelled or past its deadline. A clover call that has started runs to
completion.
*/
func checkContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("error running %s: %w", operation, err)
	}

	return nil
}
