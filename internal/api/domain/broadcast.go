package domain

// Broadcast is a campaign definition. Delivery is handled elsewhere; this
// service only stores it.
type Broadcast struct {
	ID                  string
	Name                string
	ChannelType         ChannelType
	DomainID            string // optional
	SenderID            string // optional
	StorageCredentialID string // optional
	Status              BroadcastStatus
	TagIDs              []string
	AttachmentIDs       []string
	EmailSubject        string
	EmailBody           string
	Owned
	Audit
}
