package service

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/roommaster/internal/errs"
	"github.com/and161185/roommaster/internal/httpclient"
	"github.com/and161185/roommaster/internal/model"
)

func TestProfileService(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.data(http.MethodGet, pathProfile, model.Customer{ID: "c1", FullName: "Ann"})
	api.on(http.MethodPut, pathProfile, func(r *httpclient.Request) (*httpclient.Response, error) {
		body := bodyJSON(r)
		return dataResponse(model.Customer{ID: "c1", FullName: body["fullName"].(string)}), nil
	})
	api.on(http.MethodPost, pathChangePassword, func(*httpclient.Request) (*httpclient.Response, error) {
		return &httpclient.Response{StatusCode: http.StatusNoContent}, nil
	})
	s := NewProfileService(api)

	c, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Ann", c.FullName)

	name := "Ann Lee"
	c, err = s.Update(context.Background(), ProfileUpdate{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, "Ann Lee", c.FullName)
	require.Equal(t, map[string]any{"fullName": "Ann Lee"}, bodyJSON(api.last()))

	require.NoError(t, s.ChangePassword(context.Background(), "old", "new"))
	require.Equal(t, map[string]any{"currentPassword": "old", "newPassword": "new"}, bodyJSON(api.last()))
	require.ErrorIs(t, s.ChangePassword(context.Background(), "", "new"), errs.ErrInvalidInput)
}

func TestPaymentService_QRCode(t *testing.T) {
	t.Parallel()
	png := []byte{0x89, 'P', 'N', 'G'}
	api := newFakeAPI()
	api.data(http.MethodGet, pathPaymentQR, PaymentQR{Base64: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)})
	s := NewPaymentService(api)

	qr, err := s.QRCode(context.Background())
	require.NoError(t, err)
	img, mt, err := qr.Image()
	require.NoError(t, err)
	require.Equal(t, png, img)
	require.Equal(t, "image/png", mt)
}

func TestPaymentQR_Image(t *testing.T) {
	t.Parallel()

	raw := PaymentQR{Base64: base64.StdEncoding.EncodeToString([]byte("gif"))}
	img, mt, err := raw.Image()
	require.NoError(t, err)
	require.Equal(t, []byte("gif"), img)
	require.Equal(t, "image/png", mt)

	jpeg := PaymentQR{Base64: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("j"))}
	_, mt, err = jpeg.Image()
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", mt)

	_, _, err = PaymentQR{Base64: "data:text/plain,hello"}.Image()
	require.Error(t, err)
	_, _, err = PaymentQR{Base64: "%%%"}.Image()
	require.Error(t, err)
}
