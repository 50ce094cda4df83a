package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"qrscan-go/internal/api"
	"qrscan-go/internal/app"
	"qrscan-go/internal/config"
	"qrscan-go/internal/display"
	"qrscan-go/internal/encryption"
	"qrscan-go/internal/scan"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a QRApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Scan", "History").
func newApp(operation string) (*app.QRApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewQRApp(cfg, operation, func() (string, error) {
		return promptPassphrase("Passphrase: ")
	})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptPassphrase reads a passphrase from the terminal without echo.
func promptPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pw), nil
}

// promptNewPassphrase asks for a passphrase twice and verifies both entries match.
func promptNewPassphrase() (string, error) {
	pw, err := promptPassphrase("New passphrase: ")
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	confirm, err := promptPassphrase("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", fmt.Errorf("passphrases do not match")
	}
	return pw, nil
}

// categoryNames returns the category tags for help and error text.
func categoryNames() []string {
	var names []string
	for _, c := range scan.Categories() {
		names = append(names, string(c))
	}
	return names
}

// printRecords writes one line per record: id, timestamp, category label, content.
func printRecords(records []scan.Record) {
	for _, rec := range records {
		info := display.ForCategory(rec.Category)
		fmt.Printf("%s  %s  %-7s  %s\n",
			rec.ID,
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			info.Label,
			rec.Content,
		)
	}
}

var rootCmd = &cobra.Command{
	Use:   "qrscan",
	Short: "QR code scanner with a searchable history",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Generate a new device ID
		deviceID := uuid.New().String()

		// Create config with defaults
		cfg := config.NewConfig(deviceID, defaults["base_dir"])
		cfg.History.Encrypted = encrypt

		// Initialize config file
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Device ID: %s\n", deviceID)
		fmt.Printf("Base Dir:  %s\n", defaults["base_dir"])

		if encrypt {
			passphrase, err := promptNewPassphrase()
			if err != nil {
				return err
			}
			enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
			if err != nil {
				return fmt.Errorf("creating encryptor: %w", err)
			}
			if err := enc.Setup(passphrase); err != nil {
				return fmt.Errorf("generating key pair: %w", err)
			}
			fmt.Printf("Encryption keys written under %s\n", filepath.Dir(cfg.Encryption.PublicKeyPath))
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Read config
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		// Display config
		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Device ID: %s\n", cfg.DeviceID)
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("History:   %s (slot %q, encrypted=%v)\n", cfg.History.Type, cfg.History.Slot, cfg.History.Encrypted)
		fmt.Printf("Serve:     %s\n", cfg.Serve.Addr)
		return nil
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan IMAGE...",
	Short: "Scan QR codes from image files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Scan")
		if err != nil {
			return err
		}
		defer a.Close()

		var failed bool
		for _, path := range args {
			rec, inserted, err := a.ScanImage(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				failed = true
				continue
			}
			if !inserted {
				fmt.Printf("%s: already in history\n", path)
				continue
			}
			info := display.ForCategory(rec.Category)
			fmt.Printf("%s: [%s] %s\n", path, info.Label, rec.Content)
		}

		if failed {
			return fmt.Errorf("some images could not be scanned")
		}
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add TEXT",
	Short: "Record content without scanning an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Add")
		if err != nil {
			return err
		}
		defer a.Close()

		rec, inserted, err := a.Add(args[0])
		if !inserted && err == nil {
			fmt.Println("Already in history.")
			return nil
		}
		if inserted {
			info := display.ForCategory(rec.Category)
			fmt.Printf("%s  [%s] %s\n", rec.ID, info.Label, rec.Content)
		}
		return err
	},
}

// generate command
var generateCmd = &cobra.Command{
	Use:   "generate TEXT",
	Short: "Generate a QR code PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		rawCategory, _ := cmd.Flags().GetString("category")
		size, _ := cmd.Flags().GetInt("size")
		level, _ := cmd.Flags().GetString("level")

		a, err := newApp("Generate")
		if err != nil {
			return err
		}
		defer a.Close()

		text := args[0]
		cat := scan.Classify(text)
		if rawCategory != "" {
			cat = scan.ParseCategory(rawCategory)
			if cat == scan.CategoryUnknown && rawCategory != string(scan.CategoryUnknown) {
				return fmt.Errorf("unknown category %q (valid: %s)", rawCategory, strings.Join(categoryNames(), ", "))
			}
		}

		content, err := a.Generate(text, cat, out, size, level)
		if err != nil {
			return err
		}

		fmt.Printf("Wrote %s: %s\n", out, content)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View scan history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		records := a.History(limit)
		if len(records) == 0 {
			fmt.Println("No scans recorded.")
			return nil
		}

		printRecords(records)
		return nil
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search scan history by content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Search")
		if err != nil {
			return err
		}
		defer a.Close()

		records := a.Search(args[0])
		if len(records) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		printRecords(records)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one record in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Show")
		if err != nil {
			return err
		}
		defer a.Close()

		rec, ok := a.Get(args[0])
		if !ok {
			return fmt.Errorf("no record with id %s", args[0])
		}

		info := display.ForCategory(rec.Category)
		fmt.Printf("ID:        %s\n", rec.ID)
		fmt.Printf("Scanned:   %s\n", rec.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Category:  %s (%s)\n", info.Label, info.Icon)
		fmt.Printf("Content:   %s\n", rec.Content)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete one record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		deleted, err := a.Delete(args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("no record with id %s", args[0])
		}

		fmt.Println("Deleted.")
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Clear")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Clear()
		if err != nil {
			return err
		}

		fmt.Printf("Cleared %d record(s)\n", n)
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the history over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		a, err := newApp("Serve")
		if err != nil {
			return err
		}
		defer a.Close()

		if addr == "" {
			addr = a.Config().Serve.Addr
		}

		srv := api.NewServer(a.Store(), a.Config().Generate, a.Logger())
		fmt.Printf("Serving on http://%s\n", addr)
		return http.ListenAndServe(addr, srv)
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().Bool("encrypt", false, "Generate a key pair and encrypt the history at rest")

	// history subcommands
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of records to show")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("out", "o", "qr.png", "Output PNG path")
	generateCmd.Flags().String("category", "", "Override content classification (url, text, email, phone, wifi)")
	generateCmd.Flags().Int("size", 0, "Image size in pixels (default from config)")
	generateCmd.Flags().String("level", "", "Error correction level: low, medium, high, highest (default from config)")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
}
