package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	invDTO "github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/listener"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	reqDTO "github.com/fekuna/omnipos-stock-service/internal/stockrequest/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/broker"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type options struct {
	server string
	userID string
}

// NewRootCommand builds the stockctl command tree.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Operate the stock service from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("STOCKCTL_SERVER", "http://localhost:8080"), "stock service base URL")
	root.PersistentFlags().StringVar(&opts.userID, "user", os.Getenv("STOCKCTL_USER"), "acting user id")

	client := func() *Client { return NewClient(opts.server, opts.userID) }

	root.AddCommand(
		newInventoryCommand(out, client),
		newItemsCommand(out, client),
		newRequestsCommand(out, client),
		newFulfillCommand(out, client),
		newReceiptsCommand(out),
	)
	return root
}

func newInventoryCommand(out io.Writer, client func() *Client) *cobra.Command {
	cmd := &cobra.Command{Use: "inventory", Short: "Warehouse inventory"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show available quantities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := client().Inventory(cmd.Context())
			if err != nil {
				return err
			}
			renderInventory(out, rows)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <itemId> <quantity>",
		Short: "Add stock to an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			if err := client().AddStock(cmd.Context(), args[0], qty); err != nil {
				return err
			}
			fmt.Fprintf(out, "Added %d to %s\n", qty, args[0])
			return nil
		},
	})

	var reference string
	receive := &cobra.Command{
		Use:   "receive <itemId:quantity>...",
		Short: "Book a goods receipt in one transaction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parsePairs(args)
			if err != nil {
				return err
			}
			lines := make([]invDTO.ReceiveLine, len(pairs))
			for i, p := range pairs {
				lines[i] = invDTO.ReceiveLine{ItemID: p.key, Quantity: p.qty}
			}
			applied, err := client().Receive(cmd.Context(), reference, lines)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Received %d lines\n", applied)
			return nil
		},
	}
	receive.Flags().StringVar(&reference, "reference", "", "delivery note or PO number")
	cmd.AddCommand(receive)

	var name, sku, barcode string
	var initial int
	create := &cobra.Command{
		Use:   "create-product",
		Short: "Create a catalog item together with its inventory entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			item, err := client().CreateProduct(cmd.Context(), invDTO.CreateProductInput{Name: name, SKU: sku, Barcode: barcode}, initial)
			if err != nil {
				return err
			}
			renderItems(out, []model.StockItem{*item})
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "product name")
	create.Flags().StringVar(&sku, "sku", "", "stock keeping unit")
	create.Flags().StringVar(&barcode, "barcode", "", "optional barcode")
	create.Flags().IntVar(&initial, "quantity", 0, "initial quantity")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-product <itemId>",
		Short: "Delete an item, its inventory and every request line using it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().DeleteProduct(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %s\n", args[0])
			return nil
		},
	})
	return cmd
}

func newItemsCommand(out io.Writer, client func() *Client) *cobra.Command {
	cmd := &cobra.Command{Use: "items", Short: "Stock item catalog"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := client().Items(cmd.Context())
			if err != nil {
				return err
			}
			renderItems(out, items)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Search by name, SKU or barcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := client().SearchItems(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderItems(out, items)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "lookup <barcode>",
		Short: "Find the item carrying a barcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := client().LookupBarcode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderItems(out, []model.StockItem{*item})
			return nil
		},
	})

	var barcode string
	create := &cobra.Command{
		Use:   "create <name> <sku>",
		Short: "Create a catalog item without inventory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := client().CreateItem(cmd.Context(), args[0], args[1], barcode)
			if err != nil {
				return err
			}
			renderItems(out, []model.StockItem{*item})
			return nil
		},
	}
	create.Flags().StringVar(&barcode, "barcode", "", "optional barcode")
	cmd.AddCommand(create)
	return cmd
}

func newRequestsCommand(out io.Writer, client func() *Client) *cobra.Command {
	cmd := &cobra.Command{Use: "requests", Short: "Stock requests"}

	var status, store string
	list := &cobra.Command{
		Use:   "list",
		Short: "List requests, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			requests, err := client().Requests(cmd.Context(), status, store)
			if err != nil {
				return err
			}
			renderRequests(out, requests)
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status")
	list.Flags().StringVar(&store, "store", "", "filter by store location")
	cmd.AddCommand(list)

	var createStore, comments string
	create := &cobra.Command{
		Use:   "create <itemId:quantity>...",
		Short: "Submit a request for a store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := parseItemLines(args)
			if err != nil {
				return err
			}
			req, err := client().CreateRequest(cmd.Context(), reqDTO.CreateRequestInput{
				StoreLocation: createStore, Comments: comments, Items: lines,
			})
			if err != nil {
				return err
			}
			renderRequests(out, []model.StockRequest{*req})
			return nil
		},
	}
	create.Flags().StringVar(&createStore, "store", "", "store location (defaults to your own store)")
	create.Flags().StringVar(&comments, "comments", "", "comments for the warehouse")
	cmd.AddCommand(create)

	var notes string
	var modified []string
	accept := &cobra.Command{
		Use:   "accept <requestId>",
		Short: "Accept a pending request, optionally with modified quantities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &reqDTO.TransitionOptions{WarehouseNotes: notes}
			if len(modified) > 0 {
				lines, err := parseItemLines(modified)
				if err != nil {
					return err
				}
				opts.Items = lines
			}
			return transition(cmd.Context(), out, client(), args[0], model.StatusAccepted, opts)
		},
	}
	accept.Flags().StringVar(&notes, "notes", "", "warehouse notes")
	accept.Flags().StringSliceVar(&modified, "item", nil, "replacement line itemId:quantity (repeatable)")
	cmd.AddCommand(accept)

	var reason string
	reject := &cobra.Command{
		Use:   "reject <requestId>",
		Short: "Reject a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(cmd.Context(), out, client(), args[0], model.StatusRejected, &reqDTO.TransitionOptions{RejectionReason: reason})
		},
	}
	reject.Flags().StringVar(&reason, "reason", "", "rejection reason (required)")
	cmd.AddCommand(reject)

	for _, s := range []struct {
		use    string
		status model.RequestStatus
		short  string
	}{
		{"cancel", model.StatusCancelled, "Cancel a pending request"},
		{"ship", model.StatusShipped, "Mark an accepted request shipped without scanning"},
	} {
		s := s
		cmd.AddCommand(&cobra.Command{
			Use:   s.use + " <requestId>",
			Short: s.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return transition(cmd.Context(), out, client(), args[0], s.status, nil)
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <requestId>",
		Short: "Delete a request in any state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().DeleteRequest(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %s\n", args[0])
			return nil
		},
	})
	return cmd
}

func newFulfillCommand(out io.Writer, client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "fulfill <requestId>",
		Short: "Scan items of an accepted request and ship it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          scanPrompt,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize readline: %v", err)
			}
			defer rl.Close()

			return NewFulfiller(client(), rl, out).Run(cmd.Context(), args[0])
		},
	}
}

func newReceiptsCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{Use: "receipts", Short: "Goods receipt events"}

	var brokers []string
	var topic, reference string
	publish := &cobra.Command{
		Use:   "publish <barcode:quantity>...",
		Short: "Publish a StockReceived event for the receipt listener",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parsePairs(args)
			if err != nil {
				return err
			}
			event := listener.StockReceivedEvent{
				EventID:   uuid.New().String(),
				EventType: listener.EventStockReceived,
				Payload:   listener.ReceiptPayload{Reference: reference},
				Timestamp: time.Now().UTC(),
			}
			for _, p := range pairs {
				event.Payload.Items = append(event.Payload.Items, listener.ReceiptItemPayload{Barcode: p.key, Quantity: p.qty})
			}

			value, err := json.Marshal(event)
			if err != nil {
				return err
			}
			producer := broker.NewProducer(brokers, topic)
			defer producer.Close()

			if err := producer.Publish(cmd.Context(), event.EventID, value); err != nil {
				return err
			}
			fmt.Fprintf(out, "Published %s with %d lines\n", event.EventID, len(pairs))
			return nil
		},
	}
	publish.Flags().StringSliceVar(&brokers, "brokers", []string{"localhost:9092"}, "kafka brokers")
	publish.Flags().StringVar(&topic, "topic", "inventory.receipts", "receipts topic")
	publish.Flags().StringVar(&reference, "reference", "", "delivery note or PO number")
	cmd.AddCommand(publish)
	return cmd
}

func transition(ctx context.Context, out io.Writer, c *Client, id string, status model.RequestStatus, opts *reqDTO.TransitionOptions) error {
	req, err := c.UpdateStatus(ctx, id, status, opts)
	if err != nil {
		return err
	}
	renderRequests(out, []model.StockRequest{*req})
	return nil
}

type pair struct {
	key string
	qty int
}

// parsePairs reads "key:quantity" arguments.
func parsePairs(args []string) ([]pair, error) {
	pairs := make([]pair, 0, len(args))
	for _, arg := range args {
		i := strings.LastIndex(arg, ":")
		if i <= 0 || i == len(arg)-1 {
			return nil, fmt.Errorf("expected key:quantity, got %q", arg)
		}
		qty, err := strconv.Atoi(arg[i+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q", arg)
		}
		pairs = append(pairs, pair{key: arg[:i], qty: qty})
	}
	return pairs, nil
}

func parseItemLines(args []string) ([]reqDTO.ItemLine, error) {
	pairs, err := parsePairs(args)
	if err != nil {
		return nil, err
	}
	lines := make([]reqDTO.ItemLine, len(pairs))
	for i, p := range pairs {
		lines[i] = reqDTO.ItemLine{ItemID: p.key, RequestedQuantity: p.qty}
	}
	return lines, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
