package domain

// AttachmentKind selects how an attachment is delivered.
type AttachmentKind string

const (
	AttachmentDocument AttachmentKind = "document"
	AttachmentPhoto    AttachmentKind = "photo"
)

// Attachment is a file sent alongside or instead of a text reply.
type Attachment struct {
	Kind     AttachmentKind
	FileName string
	Data     []byte
	Caption  string
}

// Reply is a transport-neutral answer to one chat message.
type Reply struct {
	Text       string
	Attachment *Attachment
}

// TextReply builds a plain text reply.
func TextReply(text string) Reply {
	return Reply{Text: text}
}

// Empty reports whether the reply carries nothing to send.
func (r Reply) Empty() bool {
	return r.Text == "" && r.Attachment == nil
}
