package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jsamuelsen/quote-manager/internal/adapters/clients"
	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
)

// DefaultRemoteCategory is assigned to fetched records when none is configured.
const DefaultRemoteCategory = "Remote"

const (
	opFetch = "fetch quotes"
	opPush  = "push quotes"
)

// RemoteQuotesConfig configures the remote quote adapter.
type RemoteQuotesConfig struct {
	// Client is the HTTP client; its BaseURL points at the remote source.
	Client *clients.Client

	FetchPath string
	PushPath  string

	// Category is stamped on every fetched record.
	Category string

	// MaxRecords truncates a fetched snapshot; zero keeps everything.
	MaxRecords int

	Logger *slog.Logger
}

// RemoteQuotes implements ports.RemoteQuotes against a JSON posts endpoint.
type RemoteQuotes struct {
	BaseAdapter

	fetchPath  string
	pushPath   string
	category   string
	maxRecords int
	logger     *slog.Logger
}

// NewRemoteQuotes creates the adapter. Panics if Client is nil.
func NewRemoteQuotes(cfg RemoteQuotesConfig) *RemoteQuotes {
	if cfg.Client == nil {
		panic("RemoteQuotes: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	category := strings.TrimSpace(cfg.Category)
	if category == "" {
		category = DefaultRemoteCategory
	}

	return &RemoteQuotes{
		BaseAdapter: NewBaseAdapter(cfg.Client, cfg.Client.ServiceName()),
		fetchPath:   cfg.FetchPath,
		pushPath:    cfg.PushPath,
		category:    category,
		maxRecords:  cfg.MaxRecords,
		logger:      logger.With(slog.String("component", "acl.RemoteQuotes")),
	}
}

// remotePost is one record as the remote serves it.
type remotePost struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// FetchRemote retrieves the full remote snapshot.
//
// A body whose root is not a JSON array is a DecodeError. An element that
// cannot be decoded as a post is kept as an empty record, so the reconciler
// reports it as malformed instead of failing the whole snapshot.
func (r *RemoteQuotes) FetchRemote(ctx context.Context) (domain.Collection, error) {
	r.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", r.fetchPath))

	body, err := r.Get(ctx, r.fetchPath, opFetch)
	if err != nil {
		return nil, err
	}

	raw, err := DecodeResponse[[]json.RawMessage](body)
	if err != nil {
		return nil, domain.NewDecodeError(r.ServiceName(), err.Error())
	}

	if raw == nil {
		return nil, domain.NewDecodeError(r.ServiceName(), "response is null, expected an array")
	}

	posts := make([]remotePost, len(raw))
	undecodable := 0

	for i, item := range raw {
		if err := json.Unmarshal(item, &posts[i]); err != nil {
			posts[i] = remotePost{}
			undecodable++
		}
	}

	quotes := TranslateSlice(posts, r.maxRecords, r.translate)

	r.logger.Log(ctx, logging.LevelTrace, "translated remote posts",
		slog.Int("received", len(raw)),
		slog.Int("kept", len(quotes)),
		slog.Int("undecodable", undecodable),
	)

	return domain.Collection(quotes), nil
}

// PushLocal sends the whole local collection to the remote.
func (r *RemoteQuotes) PushLocal(ctx context.Context, coll domain.Collection) error {
	if coll == nil {
		coll = domain.Collection{}
	}

	payload, err := json.Marshal(coll)
	if err != nil {
		return fmt.Errorf("encoding collection: %w", err)
	}

	r.logger.Log(ctx, logging.LevelTrace, "starting request",
		slog.String("path", r.pushPath),
		slog.Int("records", len(coll)),
	)

	body, err := r.Post(ctx, r.pushPath, payload, opPush)
	if err != nil {
		return err
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBody))
	_ = body.Close()

	return nil
}

// translate maps a remote post to a quote. It is pure and never fails;
// validity is judged by the reconciler.
func (r *RemoteQuotes) translate(p *remotePost) domain.Quote {
	return TranslatePost(p.ID, p.UserID, p.Title, r.category)
}

// TranslatePost maps the fields of a remote post to a quote.
// A zero id yields a quote without ID and a zero user id yields no author.
func TranslatePost(id, userID int, title, category string) domain.Quote {
	q := domain.Quote{
		Text:     strings.TrimSpace(title),
		Category: category,
	}

	if id != 0 {
		q.ID = strconv.Itoa(id)
	}

	if userID != 0 {
		q.Author = "User " + strconv.Itoa(userID)
	}

	return q
}

// Name implements ports.HealthChecker.
func (r *RemoteQuotes) Name() string {
	return r.ServiceName()
}

// Check implements ports.HealthChecker. An open circuit fails fast without a
// request.
func (r *RemoteQuotes) Check(ctx context.Context) error {
	if r.Client().CircuitState() == clients.StateOpen {
		return domain.NewNetworkError(r.ServiceName(), "health check", "circuit breaker open")
	}

	body, err := r.Get(ctx, r.fetchPath, "health check")
	if err != nil {
		return err
	}

	return body.Close()
}
