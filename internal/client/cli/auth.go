package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/scams/internal/client/models"
	"github.com/dmitrijs2005/scams/internal/client/navigation"
	"github.com/dmitrijs2005/scams/internal/client/session"
	"github.com/dmitrijs2005/scams/internal/roles"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// prompts asks for each label in turn and stops at the first input error.
func (a *App) prompts(labels ...string) ([]string, error) {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		v, err := getSimpleText(a.reader, l, a.out)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Register prompts for the account fields and creates the account. It does
// not sign in.
func (a *App) Register(ctx context.Context) error {
	v, err := a.prompts("Enter email", "Enter name")
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	role, err := getSimpleText(a.reader, fmt.Sprintf("Role %v (empty for %s)", roles.All, roles.Default), a.out)
	if err != nil {
		return err
	}

	return a.session.Register(ctx, models.RegisterRequest{Email: v[0], Name: v[1], Password: password, Role: role})
}

func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		a.println("Already logged in, use logout first")
		return nil
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, email, password); err != nil {
		return err
	}
	a.printHeader()
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	return nil
}

// Me shows the profile of the signed-in user.
func (a *App) Me(ctx context.Context) error {
	if !a.gate("/profile") {
		return nil
	}
	p, err := a.session.Me(ctx)
	if err != nil {
		return a.report(err)
	}

	a.println("Name:   ", p.Name)
	a.println("Email:  ", p.Email)
	a.println("Role:   ", p.Role)
	a.println("Member since:", p.CreatedAt.Format("2006-01-02"))
	if p.LastLogin != nil {
		a.println("Last login:  ", p.LastLogin.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	return a.session.ForgotPassword(ctx, email)
}

func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter new password", a.out)
	if err != nil {
		return err
	}
	return a.session.ResetPassword(ctx, token, password)
}

func (a *App) ChangePassword(ctx context.Context) error {
	if !a.gate("/profile") {
		return nil
	}
	current, err := getPassword("Enter current password", a.out)
	if err != nil {
		return err
	}
	next, err := getPassword("Enter new password", a.out)
	if err != nil {
		return err
	}
	return a.session.ChangePassword(ctx, current, next)
}

// Menu prints the links the signed-in user may open.
func (a *App) Menu(ctx context.Context) error {
	links := navigation.Filter(a.session.Snapshot().Identity)
	if len(links) == 0 {
		a.println("Nothing to show, please log in")
		return nil
	}
	for _, l := range links {
		a.println(fmt.Sprintf("  %-16s %s", l.Title, l.Path))
	}
	return nil
}

// report prints a failed protected call. A rejected session has already
// been dropped by the session, so the user is told to log in again.
func (a *App) report(err error) error {
	a.println("Error:", session.Describe(err))
	return err
}
