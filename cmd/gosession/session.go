package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/MrEthical07/goSession/token"
)

// errNoSession is returned by commands that need an active session.
var errNoSession = errors.New("no active session")

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Mint and store a new session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user-id",
				Aliases:  []string{"u"},
				Usage:    "User ID",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "claim",
				Aliases: []string{"c"},
				Usage:   "Extra claim as KEY=VALUE (repeatable)",
			},
		},
		Action: sessionLogin,
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:    "show",
		Aliases: []string{"whoami"},
		Usage:   "Print the current access token payload",
		Action:  sessionShow,
	}
}

func refreshCommand() *cli.Command {
	return &cli.Command{
		Name:   "refresh",
		Usage:  "Re-mint the access token if it is no longer valid",
		Action: sessionRefresh,
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Remove every session key from the profile",
		Action: sessionLogout,
	}
}

func userCommand() *cli.Command {
	return &cli.Command{
		Name:   "user",
		Usage:  "Print the cached user snapshot",
		Action: sessionUser,
	}
}

func sessionLogin(c *cli.Context) error {
	m, err := managerFrom(c)
	if err != nil {
		return err
	}

	claims, err := parseClaims(c.StringSlice("claim"))
	if err != nil {
		return err
	}
	claims[token.ClaimUserID] = c.String("user-id")

	pair, err := m.Login(c.Context, claims)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return writeOutput(c, pair, func(w io.Writer) {
		fmt.Fprintf(w, "access:  %s\n", pair.AccessToken)
		fmt.Fprintf(w, "refresh: %s\n", pair.RefreshToken)
	})
}

func sessionShow(c *cli.Context) error {
	m, err := managerFrom(c)
	if err != nil {
		return err
	}
	payload, ok := m.CurrentPayload(c.Context)
	if !ok {
		return errNoSession
	}
	return writePayload(c, payload)
}

func sessionRefresh(c *cli.Context) error {
	m, err := managerFrom(c)
	if err != nil {
		return err
	}
	access, ok := m.RefreshIfNeeded(c.Context)
	if !ok {
		return errors.New("session expired; log in again")
	}
	return writeOutput(c, map[string]string{"accessToken": access}, func(w io.Writer) {
		fmt.Fprintln(w, access)
	})
}

func sessionLogout(c *cli.Context) error {
	m, err := managerFrom(c)
	if err != nil {
		return err
	}
	if err := m.Logout(c.Context); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return writeOutput(c, map[string]bool{"loggedOut": true}, func(w io.Writer) {
		fmt.Fprintln(w, "logged out")
	})
}

func sessionUser(c *cli.Context) error {
	m, err := managerFrom(c)
	if err != nil {
		return err
	}
	user, ok := m.CachedUser(c.Context)
	if !ok {
		return errors.New("no cached user (set GOSESSION_STORE_CACHE_USER=true before login)")
	}
	return writePayload(c, user)
}

// parseClaims turns KEY=VALUE pairs into string claims. Reserved claims are refused.
func parseClaims(pairs []string) (token.Payload, error) {
	claims := token.Payload{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid claim %q, want KEY=VALUE", pair)
		}
		switch key {
		case token.ClaimIssuedAt, token.ClaimExpiresAt, token.ClaimIssuer, token.ClaimType, token.ClaimID, token.ClaimUserID:
			return nil, fmt.Errorf("claim %q is reserved", key)
		}
		claims[key] = value
	}
	return claims, nil
}

func writePayload(c *cli.Context, p token.Payload) error {
	return writeOutput(c, p, func(w io.Writer) {
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%-8s %s\n", k+":", formatClaim(k, p))
		}
	})
}

func formatClaim(name string, p token.Payload) string {
	switch name {
	case token.ClaimIssuedAt, token.ClaimExpiresAt:
		if sec, ok := p.Int64(name); ok {
			return time.Unix(sec, 0).UTC().Format(time.RFC3339)
		}
	}
	return fmt.Sprint(p[name])
}

func writeOutput(c *cli.Context, v any, text func(io.Writer)) error {
	w := c.App.Writer
	switch c.String("output") {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "text", "":
		text(w)
		return nil
	default:
		return errors.New("unknown output format " + c.String("output"))
	}
}
