package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/moodkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, username and password and creates an account.
// The new session is stored, so the user is logged in afterwards.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)
	if !bytes.Equal(password, confirm) {
		return common.NewValidationError("password", "passwords do not match")
	}

	s, err := a.auth.Register(ctx, email, string(password), username)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Registered and logged in as %s", s.Username))
	return nil
}

// Login prompts for credentials and authenticates against the server.
// There is no offline login: the server is the only authority.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		a.logger.Info(ctx, "login failed", "error", err)
		return err
	}
	printlnFn(fmt.Sprintf("Welcome, %s!", s.Username))

	// entries written before this login may be waiting
	if a.getMode() == ModeOnline {
		a.syncPending(ctx)
	}
	return nil
}

// Logout forgets the session and wipes the local journal, including
// entries that were never synced.
func (a *App) Logout(ctx context.Context) error {
	if n := a.getPending(); n > 0 {
		printlnFn(fmt.Sprintf("Warning: %d unsynced entries will be lost", n))
	}
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out")
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	p, err := a.auth.Profile(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("ID:       %d", p.ID))
	printlnFn(fmt.Sprintf("Email:    %s", p.Email))
	printlnFn(fmt.Sprintf("Username: %s", p.Username))
	printlnFn(fmt.Sprintf("Since:    %s", p.CreatedAt.Local().Format(common.DateLayout)))
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword("Current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)
	next, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)
	confirm, err := getPassword("Repeat new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)
	if !bytes.Equal(next, confirm) {
		return common.NewValidationError("password", "passwords do not match")
	}
	if bytes.Equal(next, current) {
		return errors.New("new password must differ from the current one")
	}

	if err := a.auth.ChangePassword(ctx, string(current), string(next)); err != nil {
		return err
	}
	printlnFn("Password changed")
	return nil
}
