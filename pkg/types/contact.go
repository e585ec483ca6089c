package types

import (
	"encoding/json"
	"strconv"
)

// Contact is a decoded contact record.
//
// Properties always holds flattened wire names. It reflects the last
// response decoded into the contact plus any local Update merges; it is
// never re-fetched behind the caller's back.
type Contact struct {
	VID             int64             // Remote identifier; zero until assigned.
	Properties      Properties        // Flattened property values in wire order.
	IsContact       bool              // Pass-through of "is-contact".
	ListMemberships []json.RawMessage // Verbatim "list-memberships" entries.

	isNew     *bool
	destroyed bool
}

// DecodeContact builds a Contact from any response payload carrying a
// "properties" object. It never fails: missing or malformed members leave
// the corresponding field empty.
func DecodeContact(raw json.RawMessage) *Contact {
	c := &Contact{ListMemberships: []json.RawMessage{}}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return c
	}

	c.Properties = DecodeProperties(fields["properties"])
	_ = json.Unmarshal(fields["is-contact"], &c.IsContact)

	var memberships []json.RawMessage
	if err := json.Unmarshal(fields["list-memberships"], &memberships); err == nil && memberships != nil {
		c.ListMemberships = memberships
	}

	if vid, ok := decodeID(fields["vid"]); ok {
		c.VID = vid
	} else if id, ok := decodeID(fields["id"]); ok {
		// v3 objects carry the identifier as a string "id".
		c.VID = id
	}
	return c
}

// decodeID reads a numeric identifier encoded as a JSON number or string.
func decodeID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			return v, true
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// Get returns the value of the named property.
func (c *Contact) Get(name string) (any, bool) {
	return c.Properties.Get(name)
}

// Email returns the "email" property when it is a string.
func (c *Contact) Email() (string, bool) {
	return c.stringProperty(PropertyEmail)
}

// UTK returns the "usertoken" property when it is a string.
func (c *Contact) UTK() (string, bool) {
	return c.stringProperty(PropertyUserToken)
}

func (c *Contact) stringProperty(name string) (string, bool) {
	v, ok := c.Properties.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IsNew reports whether a create-or-update call created this contact.
// known is false until SetIsNew has been called.
func (c *Contact) IsNew() (value, known bool) {
	if c.isNew == nil {
		return false, false
	}
	return *c.isNew, true
}

// SetIsNew records the outcome of a create-or-update call.
func (c *Contact) SetIsNew(v bool) {
	c.isNew = &v
}

// Destroyed reports whether the contact has been archived remotely.
func (c *Contact) Destroyed() bool {
	return c.destroyed
}

// MarkDestroyed sets the local tombstone. It is called after a successful
// archive; the contact must not be mutated afterwards.
func (c *Contact) MarkDestroyed() {
	c.destroyed = true
}

// contactJSON is the output shape of Contact.MarshalJSON.
type contactJSON struct {
	VID             int64             `json:"vid,omitempty"`
	Properties      Properties        `json:"properties"`
	IsContact       bool              `json:"is-contact"`
	ListMemberships []json.RawMessage `json:"list-memberships"`
	IsNew           *bool             `json:"is-new,omitempty"`
	Destroyed       bool              `json:"destroyed,omitempty"`
}

// MarshalJSON renders the contact with flat, ordered properties.
func (c *Contact) MarshalJSON() ([]byte, error) {
	memberships := c.ListMemberships
	if memberships == nil {
		memberships = []json.RawMessage{}
	}
	return json.Marshal(contactJSON{
		VID:             c.VID,
		Properties:      c.Properties,
		IsContact:       c.IsContact,
		ListMemberships: memberships,
		IsNew:           c.isNew,
		Destroyed:       c.destroyed,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON. It is used to read
// contacts back from local snapshots.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var w contactJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Contact{
		VID:             w.VID,
		Properties:      w.Properties,
		IsContact:       w.IsContact,
		ListMemberships: w.ListMemberships,
		isNew:           w.IsNew,
		destroyed:       w.Destroyed,
	}
	if c.ListMemberships == nil {
		c.ListMemberships = []json.RawMessage{}
	}
	return nil
}
