package service

import (
	"context"
	"net/url"

	"github.com/and161185/roommaster/internal/httpclient"
)

// REST paths, relative to the configured base URL.
const (
	pathRegister       = "/customer/auth/register"
	pathLogin          = "/customer/auth/login"
	pathLogout         = "/customer/auth/logout"
	pathRefreshTokens  = httpclient.RefreshTokensPath
	pathForgotPassword = "/customer/auth/forgot-password"
	pathResetPassword  = "/customer/auth/reset-password"

	pathProfile        = "/customer/profile"
	pathChangePassword = "/customer/profile/change-password"

	pathRoomsAvailable = "/customer/rooms/available"
	pathRooms          = "/customer/rooms/"

	pathBookings = "/customer/bookings"

	pathPaymentQR = "/customer/app-settings/payment-qr-code"
)

// call sends req and, when out is non-nil, decodes the {"data": ...} envelope into it.
func call(ctx context.Context, api httpclient.Doer, req *httpclient.Request, out any) error {
	resp, err := api.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.DecodeData(out)
}

func idPath(prefix, id string, suffix ...string) string {
	p := prefix + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}
