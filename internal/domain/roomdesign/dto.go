package roomdesign

type CreateRequest struct {
	OriginalImageURL string `json:"original_image_url" validate:"required,url,max=2048"`
	Prompt           string `json:"prompt" validate:"required"`
	Publish          bool   `json:"publish"`
}
