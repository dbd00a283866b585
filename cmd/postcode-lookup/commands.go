package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"postcode_lookup/internal/addresslookup"
	"postcode_lookup/internal/addresslookup/cache"
	"postcode_lookup/internal/addresslookup/transport"
	"postcode_lookup/internal/field"
	"postcode_lookup/internal/forms"
	"postcode_lookup/internal/widget"
	"postcode_lookup/platform/config"
	"postcode_lookup/platform/logger"
	"postcode_lookup/platform/validator"
)

// Command flags
var (
	serverURL   string
	formID      int
	fieldID     int
	renderMode  string
	httpTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(renderCmd)
}

// findCmd runs a lookup in-process
var findCmd = &cobra.Command{
	Use:   "find <postcode>",
	Short: "Look up the addresses for a postcode",
	Long: `Look up the addresses for a postcode using the provider keys from the
environment (GETADDRESS_API_KEY and GETADDRESS_ADMIN_KEY) and print the
response envelope as JSON.`,
	Example: `  # Look up a postcode
  postcode-lookup find "SW1A 1AA"

  # Input is normalized before the lookup
  postcode-lookup find sw1a1aa`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.NewWithWriter(cfg.Env, cmd.ErrOrStderr())

	lookupCache, err := cache.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize lookup cache: %w", err)
	}

	if closer, ok := lookupCache.(interface{ Close() error }); ok {
		defer func() { _ = closer.Close() }()
	}

	module := addresslookup.NewModule(cfg, lookupCache, validator.New(), log)
	env := transport.NewEnvelope(module.Service().Lookup(cmd.Context(), args[0]))

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	if !env.OK() {
		return fmt.Errorf("lookup failed with status %d", env.Status)
	}
	return nil
}

// searchCmd drives the interaction flow against a running server
var searchCmd = &cobra.Command{
	Use:   "search <postcode>",
	Short: "Search and select an address against a running server",
	Long: `Post a lookup to a running server, list the candidates, read a selection
from standard input and print the address inputs the selection fills.`,
	Example: `  # Search against a local server
  postcode-lookup search "LS1 1AA"

  # Search against another server
  postcode-lookup search "LS1 1AA" --server https://forms.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the lookup server")
	searchCmd.Flags().DurationVar(&httpTimeout, "timeout", 10*time.Second, "Request timeout")
	searchCmd.Flags().IntVar(&fieldID, "field", 1, "Field id used for input names")
}

func runSearch(cmd *cobra.Command, args []string) error {
	log := logger.NewWithWriter("production", cmd.ErrOrStderr()).WithRequestID(uuid.NewString())

	lookupField := field.PostcodeLookup{ID: fieldID}
	binding := lookupField.Binding()

	page := newTerminalPage(args[0], binding, cmd.OutOrStdout())
	notifier := widget.NotifierFunc(func(message string) {
		fmt.Fprintf(cmd.OutOrStdout(), "! %s\n", message)
	})
	endpoint := strings.TrimRight(serverURL, "/") + "/api/v1/postcode-lookup"
	ctrl := widget.NewController(page, widget.NewHTTPTransport(endpoint, httpTimeout), notifier, binding, log)

	if outcome := ctrl.Trigger(cmd.Context()); outcome != widget.OutcomeResults {
		return fmt.Errorf("lookup finished without results (%s)", outcome)
	}

	choice, err := readChoice(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), len(ctrl.Items()))
	if err != nil {
		return err
	}
	ctrl.Select(choice)

	page.PrintInputs()
	return nil
}

func readChoice(r *bufio.Reader, w io.Writer, count int) (int, error) {
	fmt.Fprint(w, "Select an address: ")
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("failed to read selection: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > count {
		return 0, fmt.Errorf("selection must be a number between 1 and %d", count)
	}
	return n - 1, nil
}

// renderCmd prints a field's markup
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a form field",
	Long: `Render the markup of a field from the form definitions file (FORMS_FILE,
or the built-in definitions when unset).`,
	Example: `  # Render field 1 of form 1
  postcode-lookup render --form 1 --field 1

  # Render the editor preview
  postcode-lookup render --form 1 --field 1 --mode editor`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().IntVar(&formID, "form", 1, "Form id")
	renderCmd.Flags().IntVar(&fieldID, "field", 1, "Field id")
	renderCmd.Flags().StringVar(&renderMode, "mode", string(field.ModeFrontend), "Render mode (frontend, editor, entry)")
}

func runRender(cmd *cobra.Command, args []string) error {
	mode, err := parseMode(validator.New(), renderMode)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	catalog, err := forms.LoadFile(cfg.GetFormsFile(), field.DefaultRegistry(), validator.New())
	if err != nil {
		return fmt.Errorf("failed to load forms: %w", err)
	}

	descriptor, err := catalog.Field(formID, fieldID)
	if err != nil {
		return fmt.Errorf("form %d field %d: %w", formID, fieldID, err)
	}
	if moder, ok := descriptor.(field.Moder); ok {
		descriptor = moder.WithMode(mode)
	}

	markup, err := descriptor.Render(nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(markup))
	return nil
}

func parseMode(val *validator.Validator, raw string) (field.Mode, error) {
	if err := val.Var(raw, field.ModeRule); err != nil {
		return "", fmt.Errorf("invalid --mode %q: must be frontend, editor or entry", raw)
	}
	return field.Mode(raw), nil
}
