package mailbox

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

const (
	defaultTimeout = 10 * time.Second

	commandCell      = "admin/comando"
	stateCell        = "admin/estado"
	lastSensorIDCell = "admin/ultimo_id_creado"
	logsPathPrefix   = "logs"
	nullBodySentinel = "null"
)

// Client talks to the shared key-value store the device firmware reads and
// writes. Log channels live under logs/{channel}; admin cells are plain
// string or number values the firmware polls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.Mailbox = &Client{}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) cellURL(path string, query url.Values) string {
	u := c.baseURL + "/" + path + ".json"
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build mailbox request", goerr.V("url", rawURL))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "mailbox request failed", goerr.V("url", rawURL))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read mailbox response", goerr.V("url", rawURL))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected mailbox status",
			goerr.V("url", rawURL), goerr.V("status", resp.StatusCode), goerr.V("body", string(data)))
	}

	return data, nil
}

// FetchTail retrieves the last limit entries of a log channel. The store
// returns an unordered object keyed by insertion-ordered keys; entries are
// sorted by key so callers see them oldest first. A channel with no data
// comes back as the literal body "null".
func (c *Client) FetchTail(ctx context.Context, ch types.Channel, limit int) ([]interfaces.MailboxEntry, error) {
	query := url.Values{}
	query.Set("orderBy", `"$key"`)
	query.Set("limitToLast", strconv.Itoa(limit))

	data, err := c.do(ctx, http.MethodGet, c.cellURL(logsPathPrefix+"/"+ch.String(), query), nil)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(string(data)) == nullBodySentinel {
		return nil, nil
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, goerr.Wrap(err, "failed to decode channel tail",
			goerr.V("channel", ch), goerr.V("body", string(data)))
	}

	entries := make([]interfaces.MailboxEntry, 0, len(raw))
	for key, message := range raw {
		entries = append(entries, interfaces.MailboxEntry{Key: key, Message: message})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	return entries, nil
}

// Push appends a message to a channel and returns the store-assigned key
func (c *Client) Push(ctx context.Context, ch types.Channel, message string) (string, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode message")
	}

	data, err := c.do(ctx, http.MethodPost, c.cellURL(logsPathPrefix+"/"+ch.String(), nil), bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var resp struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", goerr.Wrap(err, "failed to decode push response", goerr.V("body", string(data)))
	}

	return resp.Name, nil
}

// SetCommand writes the admin command cell the firmware watches
func (c *Client) SetCommand(ctx context.Context, command string) error {
	body, err := json.Marshal(command)
	if err != nil {
		return goerr.Wrap(err, "failed to encode command")
	}

	if _, err := c.do(ctx, http.MethodPut, c.cellURL(commandCell, nil), bytes.NewReader(body)); err != nil {
		return goerr.Wrap(err, "failed to set command", goerr.V("command", command))
	}
	return nil
}

// GetState reads the device-reported state cell
func (c *Client) GetState(ctx context.Context) (string, error) {
	data, err := c.do(ctx, http.MethodGet, c.cellURL(stateCell, nil), nil)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(string(data)) == nullBodySentinel {
		return "", nil
	}

	var state string
	if err := json.Unmarshal(data, &state); err != nil {
		return "", goerr.Wrap(err, "failed to decode state", goerr.V("body", string(data)))
	}

	return state, nil
}

// LastSensorID reads the sensor ID the device reports after an enrollment
func (c *Client) LastSensorID(ctx context.Context) (types.SensorID, error) {
	data, err := c.do(ctx, http.MethodGet, c.cellURL(lastSensorIDCell, nil), nil)
	if err != nil {
		return 0, err
	}

	if strings.TrimSpace(string(data)) == nullBodySentinel {
		return 0, goerr.New("no sensor ID reported")
	}

	var sensorID int
	if err := json.Unmarshal(data, &sensorID); err != nil {
		return 0, goerr.Wrap(err, "failed to decode sensor ID", goerr.V("body", string(data)))
	}

	return types.SensorID(sensorID), nil
}
