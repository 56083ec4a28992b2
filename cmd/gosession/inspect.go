package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/MrEthical07/goSession/token"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Decode a token and, with --secret, verify it",
		ArgsUsage: "TOKEN",
		Action:    inspectToken,
	}
}

type inspection struct {
	Header   token.Payload `json:"header"`
	Payload  token.Payload `json:"payload"`
	Verified bool          `json:"verified"`
	Reason   string        `json:"reason,omitempty"`
}

func inspectToken(c *cli.Context) error {
	raw := strings.TrimSpace(c.Args().First())
	if raw == "" {
		return errors.New("token required")
	}

	parts := strings.Split(raw, token.Delimiter)
	if len(parts) != 3 {
		return fmt.Errorf("%w: %d segments", token.ErrStructuralMismatch, len(parts))
	}

	enc := token.NewEncoder()
	header, err := enc.Decode(parts[0])
	if err != nil {
		return fmt.Errorf("header: %w", err)
	}
	payload, err := enc.Decode(parts[1])
	if err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	out := inspection{Header: header, Payload: payload, Reason: "no secret given"}
	if secret := c.String("secret"); secret != "" {
		codec, err := token.NewCodec(token.Config{Secret: secret})
		if err != nil {
			return err
		}
		if _, err := codec.Parse(raw); err != nil {
			out.Reason = err.Error()
		} else {
			out.Verified = true
			out.Reason = ""
		}
	}

	return writeOutput(c, out, func(w io.Writer) {
		fmt.Fprintf(w, "header:   %v\n", map[string]any(header))
		fmt.Fprintf(w, "payload:  %v\n", map[string]any(payload))
		fmt.Fprintf(w, "verified: %t", out.Verified)
		if out.Reason != "" {
			fmt.Fprintf(w, " (%s)", out.Reason)
		}
		fmt.Fprintln(w)
	})
}
