package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"freshops/internal/config"
	"freshops/internal/connectors"
	gmailconnector "freshops/internal/connectors/gmail"
	imapconnector "freshops/internal/connectors/imap"
	"freshops/internal/intake"
	"freshops/internal/listener"
	"freshops/internal/parse"
	"freshops/internal/registry"
	"freshops/internal/staging"
	"freshops/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "registry:sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		what := fs.String("what", "all", "all|products|customers")
		_ = fs.Parse(os.Args[2:])
		svc := registry.NewSyncService(db, cfg)
		switch *what {
		case "products":
			count, err := svc.SyncProducts(context.Background())
			must(err)
			fmt.Printf("registry sync complete: %d products\n", count)
		case "customers":
			count, err := svc.SyncCustomers(context.Background())
			must(err)
			fmt.Printf("registry sync complete: %d customers\n", count)
		default:
			products, customers, err := svc.SyncAll(context.Background())
			must(err)
			fmt.Printf("registry sync complete: %d products, %d customers\n", products, customers)
		}
	case "parse:order":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "file with pasted order text, or - for stdin")
		out := fs.String("out", "", "review xlsx path")
		commit := fs.Bool("commit", false, "commit resolved rows to the order store")
		discard := fs.Bool("discard-unresolved", false, "explicitly drop unresolved rows before commit")
		assign := fs.String("assign", "", "manual resolutions as a comma list of row=PRODUCT_CODE")
		_ = fs.Parse(os.Args[2:])
		text := readInput(*input)

		customers, err := db.ListCustomers()
		must(err)
		products, err := db.ListProducts()
		must(err)
		history := func(ctx context.Context, fragment string) (map[string]struct{}, error) {
			return db.RecentProductCodes(fragment)
		}

		parser := parse.NewOrderParser(cfg, customers, products, history)
		result := parser.Parse(context.Background(), text)

		if strings.TrimSpace(*assign) != "" {
			must(applyAssignments(result.Staging, registry.BuildIndex(products), *assign))
		}

		printOrderResult(result)
		if strings.TrimSpace(*out) != "" {
			must(intake.ExportOrderReviewXLSX(result, *out))
			fmt.Printf("review sheet written to %s\n", *out)
		}

		if *commit {
			if result.Customer == nil {
				must(fmt.Errorf("cannot commit: no customer resolved; select one manually"))
			}
			if *discard {
				dropped := result.Staging.DiscardUnresolved()
				if dropped > 0 {
					fmt.Printf("discarded %d unresolved row(s)\n", dropped)
				}
			}
			var deliveryDate *string
			if result.DeliveryDate != nil {
				formatted := result.DeliveryDate.Format(time.DateOnly)
				deliveryDate = &formatted
			}
			orderID, err := result.Staging.Commit(db, result.Customer.ID, deliveryDate)
			must(err)
			fmt.Printf("order %d committed with %d row(s)\n", orderID, result.Staging.Len())
		}
	case "parse:pricelist":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "file with pasted price list, or - for stdin")
		supplier := fs.String("supplier", "", "supplier name for committed records")
		commit := fs.Bool("commit", false, "insert parsed price records")
		_ = fs.Parse(os.Args[2:])
		text := readInput(*input)

		products, err := db.ListProducts()
		must(err)
		parser := parse.NewPriceListParser(cfg, products)
		staged := parser.Parse(text)

		for _, item := range staged.Items() {
			fmt.Printf("%-12s %-24s %-14s %8.2f  <- %s\n", item.ProductCode, item.ProductName, item.UOM, item.Price, item.RawLine)
		}
		fmt.Printf("%d line(s) recognized\n", staged.Len())

		if *commit {
			if strings.TrimSpace(*supplier) == "" {
				must(fmt.Errorf("--supplier is required with --commit"))
			}
			count, err := staged.Commit(db, *supplier)
			must(err)
			fmt.Printf("%d price record(s) inserted for %s\n", count, *supplier)
		}
	case "intake:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.IntakeProvider, "gmail|imap")
		label := fs.String("label", cfg.IntakeLabel, "mailbox/label")
		max := fs.Int("max", cfg.IntakeFetchMax, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*provider, *label, *max)
		must(err)
		fmt.Printf("intake fetch done provider=%s fetched=%d stored=%d known=%d\n", *provider, result.Fetched, result.Stored, result.Known)
	case "intake:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.IntakeProvider, "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", cfg.IntakeProcessBatch, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor := intake.NewProcessor(db, cfg)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(context.Background(), *provider, *messageID)
			must(err)
			fmt.Printf("processed intake id=%d kind=%s rows=%d\n", res.IntakeID, res.Kind, res.Rows)
			return
		}
		processed, rows, err := processor.ProcessPending(context.Background(), *batch, *provider)
		must(err)
		fmt.Printf("processed pending intake=%d rows=%d\n", processed, rows)
	case "intake:listen":
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func printOrderResult(result parse.OrderResult) {
	if result.Customer != nil {
		fmt.Printf("customer: %s (score %.0f)\n", result.Customer.Display(), result.CustomerScore)
	} else {
		fmt.Println("customer: unresolved")
	}
	if result.DeliveryDate != nil {
		fmt.Printf("delivery: %s\n", result.DeliveryDate.Format(time.DateOnly))
	}
	for i, item := range result.Staging.Items() {
		status := "ok"
		if !item.Resolved() {
			status = "??"
		}
		fmt.Printf("%2d [%s] %gx %-4s %-24s %8.2f  <- %s\n", i+1, status, item.Quantity, item.UOM, item.ProductName, item.Price, item.RawLine)
	}
	if n := result.Staging.UnresolvedCount(); n > 0 {
		fmt.Printf("%d row(s) unresolved; resolve or discard before commit\n", n)
	}
}

// applyAssignments resolves staged rows by hand: "2=CAR-01" assigns catalog
// product CAR-01 to the second printed row.
func applyAssignments(s *staging.OrderStaging, index *registry.Index, arg string) error {
	for _, pair := range strings.Split(arg, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("bad assignment %q, want row=PRODUCT_CODE", pair)
		}
		rowNo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return fmt.Errorf("bad row number in %q", pair)
		}
		code := strings.TrimSpace(parts[1])
		product, ok := index.ByCode[code]
		if !ok {
			return fmt.Errorf("unknown product code %q", code)
		}
		if err := s.AssignProduct(rowNo-1, product); err != nil {
			return err
		}
	}
	return nil
}

func readInput(input string) string {
	if strings.TrimSpace(input) == "" {
		must(fmt.Errorf("--input is required"))
	}
	if input == "-" {
		blob, err := io.ReadAll(os.Stdin)
		must(err)
		return string(blob)
	}
	blob, err := os.ReadFile(input)
	must(err)
	return string(blob)
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: freshops <command>")
	fmt.Println("commands:")
	fmt.Println("  registry:sync [--what=all|products|customers]")
	fmt.Println("  parse:order --input=FILE|- [--out=review.xlsx] [--assign=2=CAR-01,...] [--commit] [--discard-unresolved]")
	fmt.Println("  parse:pricelist --input=FILE|- [--supplier=NAME] [--commit]")
	fmt.Println("  intake:fetch [--provider=gmail|imap] [--label=INBOX] [--max=20]")
	fmt.Println("  intake:process [--provider=gmail|imap] [--messageId=...] [--batch=20]")
	fmt.Println("  intake:listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
