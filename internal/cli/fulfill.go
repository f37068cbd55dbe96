package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

const (
	scanPrompt = "scan> "
)

// LineReader is the subset of *readline.Instance the scan loop uses.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Fulfiller drives the interactive scan, confirm, ship loop for one request.
type Fulfiller struct {
	client *Client
	in     LineReader
	out    io.Writer
}

func NewFulfiller(client *Client, in LineReader, out io.Writer) *Fulfiller {
	return &Fulfiller{client: client, in: in, out: out}
}

func (f *Fulfiller) Run(ctx context.Context, requestID string) error {
	s, err := f.client.StartFulfillment(ctx, requestID)
	if err != nil {
		return err
	}
	renderSession(f.out, s)
	fmt.Fprintln(f.out, "Scan or type a barcode. 'ship' ships when complete, 'exit' leaves the session open.")

	for {
		f.in.SetPrompt(scanPrompt)
		line, err := f.in.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "ship":
			req, err := f.client.Ship(ctx, requestID)
			if err != nil {
				fmt.Fprintf(f.out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(f.out, "Request #%d shipped\n", req.RequestNumber)
			return nil
		}

		if err := f.scan(ctx, requestID, input); err != nil {
			fmt.Fprintf(f.out, "Error: %v\n", err)
		}
	}
}

func (f *Fulfiller) scan(ctx context.Context, requestID, barcode string) error {
	result, err := f.client.Scan(ctx, requestID, barcode)
	if err != nil {
		return err
	}

	fmt.Fprintf(f.out, "%s (%s): requested %d, fulfilled %d\n",
		result.Item.Name, result.Item.SKU, result.RequestedQty, result.FulfilledQty)

	f.in.SetPrompt(fmt.Sprintf("quantity [%d]> ", result.SuggestedQty))
	line, err := f.in.Readline()
	if err != nil {
		return err
	}

	qty := result.SuggestedQty
	if v := strings.TrimSpace(line); v != "" {
		qty, err = strconv.Atoi(v)
		if err != nil || qty <= 0 {
			return fmt.Errorf("invalid quantity %q", v)
		}
	}

	s, err := f.client.Confirm(ctx, requestID, result.Item.ID, qty)
	if err != nil {
		return err
	}
	renderSession(f.out, s)
	if s.CanShip() {
		fmt.Fprintln(f.out, "All items complete. Type 'ship' to mark the request shipped.")
	}
	return nil
}
