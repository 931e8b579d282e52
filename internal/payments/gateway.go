package payments

import (
	"context"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

type Status string

const (
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusPending  Status = "pending"
)

// PaymentInfo is what the scheduling core needs from the gateway: the
// outcome and the booking reference the charge was created with. Capture
// itself is entirely the gateway's business.
type PaymentInfo struct {
	Status Status

	// ExternalReference carries the booking public id.
	ExternalReference string
}

type Gateway interface {
	VerifyPayment(ctx context.Context, paymentID int) (*PaymentInfo, error)
}

type MercadoPagoGateway struct {
	client payment.Client
}

func NewMercadoPago(accessToken string) (*MercadoPagoGateway, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, err
	}
	return &MercadoPagoGateway{client: payment.NewClient(cfg)}, nil
}

func (g *MercadoPagoGateway) VerifyPayment(ctx context.Context, paymentID int) (*PaymentInfo, error) {
	p, err := g.client.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	info := &PaymentInfo{ExternalReference: p.ExternalReference}
	switch p.Status {
	case "approved":
		info.Status = StatusApproved
	case "rejected", "cancelled", "charged_back":
		info.Status = StatusRejected
	default:
		info.Status = StatusPending
	}
	return info, nil
}

var _ Gateway = (*MercadoPagoGateway)(nil)
