package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/yama/internal/common"
)

func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.scanner, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.scanner, a.out)
	if err != nil {
		return err
	}
	defer common.WipeBytes(password)

	if err := a.authService.Login(ctx, userName, password); err != nil {
		a.logger.Error(ctx, "login failed", "user", userName, "error", err)
		return err
	}

	fmt.Fprintln(a.out, "Logged in as", userName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	if err := a.authService.Logout(ctx); err != nil {
		a.logger.Error(ctx, "logout failed", "error", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	ident, err := a.authService.Whoami()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "User:", ident.UserID)
	if !ident.ExpiresAt.IsZero() {
		state := "valid"
		if ident.Expired(time.Now()) {
			state = "expired, refreshed on next request"
		}
		fmt.Fprintf(a.out, "Access token expires: %s (%s)\n", ident.ExpiresAt.Local().Format(time.RFC3339), state)
	}
	return nil
}
