package dto

type CreatePaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// PaymentFailedRequest - обратный вызов платежного провайдера
type PaymentFailedRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
