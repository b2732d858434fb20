package service

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/and161185/roommaster/internal/httpclient"
)

// PaymentQR is the bank-transfer QR image configured by the hotel.
type PaymentQR struct {
	// Base64 is either raw base64 or a data URL ("data:image/png;base64,...").
	Base64 string `json:"base64"`
}

// Image decodes the QR payload and returns its bytes and media type.
func (q PaymentQR) Image() ([]byte, string, error) {
	payload, mediaType := q.Base64, "image/png"
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		meta, data, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, "", errors.New("qr code: unsupported data url")
		}
		if mt := strings.TrimSuffix(meta, ";base64"); mt != "" {
			mediaType = mt
		}
		payload = data
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	return b, mediaType, nil
}

// PaymentService reads payment settings.
type PaymentService struct {
	api httpclient.Doer
}

func NewPaymentService(api httpclient.Doer) *PaymentService {
	return &PaymentService{api: api}
}

// QRCode returns the payment QR code shown for deposits.
func (s *PaymentService) QRCode(ctx context.Context) (PaymentQR, error) {
	var out PaymentQR
	err := call(ctx, s.api, &httpclient.Request{Method: http.MethodGet, Path: pathPaymentQR}, &out)
	return out, err
}
