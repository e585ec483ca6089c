// Package contacts maps typed contact operations onto the HubSpot
// Contacts API endpoints.
//
// A Service is stateless apart from its Connection and logger; construct
// one and share it:
//
//	svc := contacts.NewService(conn)
//	c, err := svc.FindByEmail(ctx, "ada@example.com")
//	if err != nil {
//		return err
//	}
//	if c == nil {
//		// no such contact
//	}
//
// # Lookups
//
// Each key space (vid, email, user token) has a single-record and a batch
// operation, and Lookup dispatches on the Go type of the key. Batch
// results come back in the order the response object lists them, which is
// not necessarily the order of the keys passed in. Batch lookup by user
// token always fails with ErrUnsupportedLookup because the upstream
// endpoint cannot be relied on.
//
// Email lookups treat a "does not exist" failure as an absent contact and
// return (nil, nil); IsContactNotFound is the single place that decides.
//
// # Writes
//
// Update merges the submitted properties into the local Contact without
// re-reading it. If the API normalizes a value, the local copy keeps what
// was sent until the caller fetches the contact again.
//
// BatchCreateOrUpdate does not split large inputs. The API handles up to
// about 100 records per call well; chunking is up to the caller.
package contacts
