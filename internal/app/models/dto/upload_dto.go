package dto

// UploadResponse describes a stored ID document
type UploadResponse struct {
	URL         string `json:"url" example:"uploads/id-documents/3f1c.pdf"`
	ContentType string `json:"contentType" example:"application/pdf"`
	Size        int64  `json:"size" example:"48213"`
}
