package queue

const (
	TypeEmbedDocument = "embed:document"
)

type EmbedDocumentPayload struct {
	DocumentID string `json:"document_id"`
}
