// consolectl is a developer tool for the console API client: it dispatches
// CRUD operations by their generated names, prints working-hours summaries,
// and can host the in-memory fake backend for frontend development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/httplog/v3"
	"golang.org/x/oauth2"

	"github.com/staffhive/console-client-go/api"
	"github.com/staffhive/console-client-go/entity"
	"github.com/staffhive/console-client-go/internal/config"
	"github.com/staffhive/console-client-go/internal/fakeapi"
	"github.com/staffhive/console-client-go/officetime"
	"github.com/staffhive/console-client-go/workhours"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "fake-server":
		err = runFakeServer()
	case "call":
		err = runCall(os.Args[2:])
	case "hours":
		err = runHours(os.Args[2:], false)
	case "reset-hours":
		err = runHours(os.Args[2:], true)
	case "operations":
		err = runOperations()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  consolectl call <operation> [id] [json-payload] [filter=value ...]
  consolectl operations
  consolectl hours <YYYY-MM>
  consolectl reset-hours <YYYY-MM>
  consolectl fake-server`)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "consolectl"),
	)
}

func newClient(cfg *config.Config, logger *slog.Logger) *api.Client {
	var tokens oauth2.TokenSource
	if cfg.Auth.StaticToken != "" {
		tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Auth.StaticToken, TokenType: "Bearer"})
	} else {
		tokens = &api.Credentials{
			BaseURL:  cfg.API.BaseURL,
			Email:    cfg.Auth.Email,
			Password: cfg.Auth.Password,
		}
	}
	return api.NewClient(cfg.API.BaseURL, tokens,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithLogger(logger),
	)
}

func runCall(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("call requires an operation name")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.App.LogLevel)
	registry := entity.NewRegistry(newClient(cfg, logger))

	req := entity.CallRequest{Query: api.ListQuery{Filters: map[string]string{}}}
	for _, arg := range args[1:] {
		switch {
		case strings.HasPrefix(arg, "{"):
			req.Payload = json.RawMessage(arg)
		case strings.Contains(arg, "="):
			key, value, _ := strings.Cut(arg, "=")
			req.Query.Filters[key] = value
		default:
			req.ID = arg
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
	defer cancel()
	result, err := registry.Call(ctx, args[0], req)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runOperations() error {
	// Building the registry needs no live backend; the client is never used.
	registry := entity.NewRegistry(api.NewClient("http://localhost", nil))
	for _, name := range registry.Operations() {
		fmt.Println(name)
	}
	return nil
}

func runHours(args []string, reset bool) error {
	if len(args) == 0 {
		return fmt.Errorf("expected a month argument (YYYY-MM)")
	}
	year, month, err := workhours.ParseMonthKey(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.App.LogLevel)
	service := officetime.NewService(newClient(cfg, logger))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
	defer cancel()

	var data workhours.MonthData
	if reset {
		data, err = service.Reset(ctx, year, month)
	} else {
		data, err = service.SelectMonth(ctx, year, month)
	}
	if err != nil {
		return err
	}
	return printJSON(data)
}

func runFakeServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.App.LogLevel)

	store := fakeapi.NewStore()
	seedDemoData(store)
	server := fakeapi.New(
		fakeapi.WithStore(store),
		fakeapi.WithLogger(logger),
		fakeapi.WithUser(cfg.Auth.Email, cfg.Auth.Password),
	)

	addr := fmt.Sprintf(":%d", cfg.App.FakePort)
	fmt.Printf("Fake console API running at http://localhost%s\n", addr)
	return http.ListenAndServe(addr, server)
}

// seedDemoData gives the fake backend enough records for the frontend to
// render something on every screen.
func seedDemoData(store *fakeapi.Store) {
	monthKey := workhours.MonthKey(time.Now().Year(), time.Now().Month())

	store.Seed("companyDetails", fakeapi.Record{
		"office_start_time": "09:00",
		"office_end_time":   "18:00",
		"late_threshold":    "09:15",
		"saturday_policy":   []string{"half-day", "half-day", "half-day", "full-day", "off"},
		"monthly_settings":  map[string]any{},
	})
	store.Seed("holiday",
		fakeapi.Record{"name": "Founders Day", "date": monthKey + "-15", "day_type": "full"},
		fakeapi.Record{"name": "Inventory Close", "date": monthKey + "-22", "day_type": "half"},
	)
	store.Seed("lead",
		fakeapi.Record{"name": "Acme Corp", "email": "ops@acme.test", "source": "referral", "status": "new"},
		fakeapi.Record{"name": "Globex", "email": "it@globex.test", "source": "website", "status": "contacted"},
	)
	store.Seed("contact",
		fakeapi.Record{"name": "Jamie Rivera", "email": "jamie@acme.test", "is_client": true},
		fakeapi.Record{"name": "Morgan Lee", "email": "morgan@globex.test", "is_client": false},
	)
	store.Seed("employee",
		fakeapi.Record{"name": "Alex Kim", "employee_code": "EMP-001", "department": "Engineering"},
	)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
