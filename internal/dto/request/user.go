package request

type UpdatePublisherStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active inactive"`
}
