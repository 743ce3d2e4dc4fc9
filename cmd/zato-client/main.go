// Command zato-client invokes Zato services from the command line.
//
// A service is called either by name (or id) through the server's generic
// service-invoke endpoint:
//
//	zato-client -service zato.ping
//	zato-client -service my.service -payload '{"customer_id": 1}' -query '.name'
//	zato-client -service my.report -query '//row/total' -mode xpath
//	zato-client -service my.service -schema customer.schema.json
//	zato-client -service my.service -infer-schema > customer.schema.json
//
// or directly through a channel, decoding the response in a chosen format:
//
//	ZATO_PATH=/zato/soap zato-client -format soap-sio -soap-action zato:ping -payload @req.xml
//
// Connection settings come from the environment (see internal/config).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/usestring/zato-client-go/internal/config"
	"github.com/usestring/zato-client-go/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	logger, cleanup, err := logging.Setup(logging.FromConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := run(ctx, cfg, logger, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errCallFailed) && !errors.Is(err, flag.ErrHelp) {
			slog.Error("invocation failed", "error", err)
		}
		cleanup()
		os.Exit(1)
	}
}

// options are the command-line flags of one run.
type options struct {
	service    string
	id         int64
	async      bool
	format     string
	path       string
	soapAction string
	payload    string
	raw        bool
	query      string
	mode       string
	schema     string
	infer      bool
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("zato-client", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.service, "service", "", "name of the service to invoke through the service-invoke endpoint")
	fs.Int64Var(&o.id, "id", 0, "id of the service to invoke through the service-invoke endpoint")
	fs.BoolVar(&o.async, "async", false, "invoke the service asynchronously")
	fs.StringVar(&o.format, "format", "json", "response format of a direct channel call: json, json-sio, xml, soap, soap-sio, raw")
	fs.StringVar(&o.path, "path", "", "channel path of a direct call (default $ZATO_PATH)")
	fs.StringVar(&o.soapAction, "soap-action", "", "SOAPAction of soap and soap-sio calls")
	fs.StringVar(&o.payload, "payload", "", "request payload; @file reads a file, - reads stdin")
	fs.BoolVar(&o.raw, "raw", false, "send a JSON payload as is instead of encoding it")
	fs.StringVar(&o.query, "query", "", "expression extracting values from the response")
	fs.StringVar(&o.mode, "mode", "", "query language: jq, xpath, css, regex, form (default depends on the response)")
	fs.StringVar(&o.schema, "schema", "", "JSON Schema file (JSON or YAML) the response data must satisfy")
	fs.BoolVar(&o.infer, "infer-schema", false, "print a JSON Schema inferred from the response data instead of the data")
	fs.BoolVar(&o.verbose, "v", false, "print a response summary to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return &o, nil
}

// readPayload resolves the -payload flag.
func readPayload(arg string, stdin io.Reader) ([]byte, error) {
	switch {
	case arg == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading payload from stdin: %w", err)
		}
		return b, nil
	case strings.HasPrefix(arg, "@"):
		b, err := os.ReadFile(arg[1:])
		if err != nil {
			return nil, fmt.Errorf("reading payload: %w", err)
		}
		return b, nil
	default:
		return []byte(arg), nil
	}
}
