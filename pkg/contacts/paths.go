package contacts

// HubSpot Contacts API endpoints. Placeholders of the form :name are
// filled from request params by the Connection.
const (
	pathCreate          = "/contacts/v1/contact"
	pathBatchUpsert     = "/contacts/v1/contact/batch/"
	pathContactByEmail  = "/contacts/v1/contact/email/:contact_email/profile"
	pathContactsByEmail = "/contacts/v1/contact/emails/batch"
	pathContactByID     = "/contacts/v1/contact/vid/:contact_id/profile"
	pathContactsByID    = "/contacts/v1/contact/vids/batch"
	pathContactByUTK    = "/contacts/v1/contact/utk/:contact_utk/profile"
	pathContactsByUTK   = "/contacts/v1/contact/utks/batch" // disabled, see FindByUTKs
	pathUpdate          = "/contacts/v1/contact/vid/:contact_id/profile"
	pathDestroy         = "/contacts/v1/contact/vid/:contact_id"
	pathMerge           = "/contacts/v1/contact/merge-vids/:contact_id"
	pathAll             = "/contacts/v1/lists/all/contacts/all"
	pathRecentlyUpdated = "/contacts/v1/lists/recently_updated/contacts/recent"
	pathRecentlyCreated = "/contacts/v1/lists/all/contacts/recent"
	pathCreateOrUpdate  = "/contacts/v1/contact/createOrUpdate/email/:contact_email"
	pathQuery           = "/contacts/v1/search/query"
	pathSearch          = "/crm/v3/objects/contacts/search"
)

// Path parameter names.
const (
	paramContactID    = "contact_id"
	paramContactEmail = "contact_email"
	paramContactUTK   = "contact_utk"
	paramBatchVID     = "batch_vid"
	paramBatchEmail   = "batch_email"
)
