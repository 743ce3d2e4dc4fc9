package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/usestring/zato-client-go/internal/config"
	"github.com/usestring/zato-client-go/internal/schema"
	"github.com/usestring/zato-client-go/pkg/client"
	"github.com/usestring/zato-client-go/pkg/contenttype"
	"github.com/usestring/zato-client-go/pkg/jsoncompact"
	"github.com/usestring/zato-client-go/pkg/jsonschema"
	"github.com/usestring/zato-client-go/pkg/textquery"
)

var (
	// errCallFailed is returned once a failed response has been reported.
	errCallFailed = errors.New("service call failed")
	// errSchemaMismatch is returned once schema violations have been reported.
	errSchemaMismatch = errors.New("response data does not match the schema")
)

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string,
	stdin io.Reader, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	var payload []byte
	if o.payload != "" {
		if payload, err = readPayload(o.payload, stdin); err != nil {
			return err
		}
	}

	opts := append(cfg.ClientOptions(), client.WithLogger(logger))

	var resp *client.Response
	if o.service != "" || o.id != 0 {
		resp, err = invokeService(ctx, cfg, opts, o, payload)
	} else {
		resp, err = invokeChannel(ctx, cfg, opts, o, payload)
	}
	if err != nil {
		return err
	}

	if o.verbose {
		fmt.Fprintln(stderr, resp.String())
	}
	if !resp.OK() {
		if !o.verbose {
			fmt.Fprintln(stderr, resp.String())
		}
		if details := resp.DetailsText(); details != "" {
			fmt.Fprintln(stderr, details)
		}
		return errCallFailed
	}

	if o.schema != "" {
		if err := checkSchema(stderr, resp, o.schema); err != nil {
			return err
		}
	}
	if o.infer {
		return renderSchema(stdout, resp)
	}

	if o.query != "" {
		return renderQuery(stdout, resp, o.query, o.mode, cfg.CompactOptions())
	}
	return render(stdout, resp, cfg.CompactOptions())
}

func invokeService(ctx context.Context, cfg *config.Config, opts []client.Option,
	o *options, payload []byte) (*client.Response, error) {
	req := client.ServiceRequest{
		Name:       o.service,
		ID:         o.id,
		RawPayload: o.raw,
	}
	if o.raw {
		req.Payload = payload
	} else if len(payload) > 0 {
		var v any
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("payload is not valid JSON (use -raw to send it as is): %w", err)
		}
		req.Payload = v
	}

	inv := client.NewAnyServiceInvoker(cfg.Address, cfg.InvokePath, opts...)
	if o.async {
		return inv.InvokeAsync(ctx, req)
	}
	return inv.Invoke(ctx, req)
}

func invokeChannel(ctx context.Context, cfg *config.Config, opts []client.Option,
	o *options, payload []byte) (*client.Response, error) {
	format, err := client.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	path := o.path
	if path == "" {
		path = cfg.Path
	}
	if path == "" {
		return nil, errors.New("no channel path: set -path or ZATO_PATH, or use -service")
	}

	switch format {
	case client.FormatJSON, client.FormatJSONSIO:
		var c *client.JSONClient
		if format == client.FormatJSONSIO {
			c = &client.NewJSONSIOClient(cfg.Address, path, opts...).JSONClient
		} else {
			c = client.NewJSONClient(cfg.Address, path, opts...)
		}
		if o.raw || len(payload) == 0 {
			return c.Invoke(ctx, payload, client.WithoutJSON())
		}
		var v any
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("payload is not valid JSON (use -raw to send it as is): %w", err)
		}
		return c.Invoke(ctx, v)
	case client.FormatXML:
		return client.NewXMLClient(cfg.Address, path, opts...).Invoke(ctx, payload)
	case client.FormatSOAP:
		return client.NewSOAPClient(cfg.Address, path, opts...).Invoke(ctx, o.soapAction, payload)
	case client.FormatSOAPSIO:
		return client.NewSOAPSIOClient(cfg.Address, path, opts...).Invoke(ctx, o.soapAction, payload)
	case client.FormatRaw:
		return client.NewRawDataClient(cfg.Address, path, opts...).Invoke(ctx, payload)
	default:
		return nil, fmt.Errorf("%w: %s cannot be used for direct calls", client.ErrUnsupportedFormat, format)
	}
}

// checkSchema validates the response data against the schema in file and
// reports every violation to w.
func checkSchema(w io.Writer, resp *client.Response, file string) error {
	doc, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}
	v, err := schema.Compile(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	data, ok := resp.JSONValue()
	if !ok {
		return fmt.Errorf("%s response carries no JSON data to validate", resp.Format())
	}
	res := v.ValidateValue(data)
	if res.Valid {
		return nil
	}
	for _, e := range res.Errors {
		fmt.Fprintln(w, e)
	}
	return errSchemaMismatch
}

// renderSchema writes a schema inferred from the response data.
func renderSchema(w io.Writer, resp *client.Response) error {
	data, ok := resp.JSONValue()
	if !ok {
		return fmt.Errorf("%s response carries no JSON data to infer a schema from", resp.Format())
	}
	out, err := json.MarshalIndent(jsonschema.Infer(data).Schema, "", "  ")
	if err != nil {
		return fmt.Errorf("rendering schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// render writes the response data to w, compacting JSON data.
func render(w io.Writer, resp *client.Response, compact *jsoncompact.Options) error {
	if !resp.HasData() {
		return nil
	}

	if n := resp.Node(); n != nil {
		_, err := fmt.Fprintln(w, n.OutputXML(true))
		return err
	}

	if s, ok := resp.Data().(string); ok {
		return renderText(w, resp, s, compact)
	}

	data := resp.Data()
	if m := resp.Map(); m != nil {
		data = m
	}
	return renderJSON(w, data, compact)
}

// renderQuery writes the values a query extracts from the response.
func renderQuery(w io.Writer, resp *client.Response, expr, mode string, compact *jsoncompact.Options) error {
	res, err := textquery.NewEngine().QueryResponse(resp, expr, mode, 0)
	if err != nil {
		return err
	}
	for _, e := range res.Errors {
		slog.Warn("query error", slog.String("expression", expr), slog.String("error", e))
	}
	return renderJSON(w, res.Values, compact)
}

func renderJSON(w io.Writer, data any, compact *jsoncompact.Options) error {
	out, err := json.MarshalIndent(jsoncompact.CompactValue(data, compact), "", "  ")
	if err != nil {
		return fmt.Errorf("rendering response data: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func renderText(w io.Writer, resp *client.Response, s string, compact *jsoncompact.Options) error {
	ct := resp.Raw().Header.Get("Content-Type")
	if contenttype.IsBinary(ct, []byte(s)) {
		_, err := fmt.Fprintf(w, "<%d bytes of %s data>\n", len(s), contenttype.Classify(ct))
		return err
	}
	if contenttype.Classify(ct) == contenttype.JSON {
		if out, err := jsoncompact.Compact([]byte(s), compact); err == nil {
			s = string(out)
		}
	}
	_, err := fmt.Fprintln(w, s)
	return err
}
