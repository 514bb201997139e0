package cache

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RedisConfig captures the minimal connection parameters required by the
// lightweight Redis client.
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
	TLS      bool
	Timeout  time.Duration
}

const defaultRedisTimeout = 5 * time.Second

// RedisClient implements the small subset of the Redis protocol the field
// tier needs: AUTH, SELECT, GET, MGET, SET (with PX), EXISTS, DEL, KEYS and
// PING. It maintains a single connection guarded by a mutex and reconnects
// lazily after a network failure.
type RedisClient struct {
	cfg    RedisConfig
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// NewRedisClient creates a new Redis client. It eagerly establishes the
// connection so that misconfiguration is surfaced during startup.
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	cfg.Address = strings.TrimSpace(cfg.Address)
	if cfg.Address == "" {
		return nil, errors.New("redis: address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRedisTimeout
	}

	client := &RedisClient{cfg: cfg}
	if err := client.ensureConnection(context.Background()); err != nil {
		return nil, err
	}
	return client, nil
}

// Close closes the underlying network connection.
func (c *RedisClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		c.reader = nil
		return err
	}
	return nil
}

// Ready reports whether a connection is currently established. A client
// that lost its connection becomes ready again on the next successful call.
func (c *RedisClient) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Ping probes the connection.
func (c *RedisClient) Ping(ctx context.Context) error {
	resp, err := c.execute(ctx, [][]string{{"PING"}})
	if err != nil {
		return err
	}
	if s, ok := resp[0].(string); !ok || !strings.EqualFold(s, "PONG") {
		return fmt.Errorf("redis: unexpected PING reply %v", resp[0])
	}
	return nil
}

// Get retrieves the value associated with a key.
func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp, err := c.execute(ctx, [][]string{{"GET", key}})
	if err != nil {
		return nil, false, err
	}
	switch v := resp[0].(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return v, true, nil
	default:
		return nil, false, fmt.Errorf("redis: unexpected GET reply type %T", v)
	}
}

// GetMany retrieves a batch of keys with a single MGET. Missing keys are
// omitted from the result.
func (c *RedisClient) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}

	resp, err := c.execute(ctx, [][]string{append([]string{"MGET"}, keys...)})
	if err != nil {
		return nil, err
	}
	items, ok := resp[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("redis: unexpected MGET reply type %T", resp[0])
	}
	if len(items) != len(keys) {
		return nil, fmt.Errorf("redis: MGET returned %d values for %d keys", len(items), len(keys))
	}

	out := make(map[string][]byte, len(keys))
	for i, item := range items {
		if item == nil {
			continue
		}
		raw, ok := item.([]byte)
		if !ok {
			return nil, fmt.Errorf("redis: unexpected MGET element type %T", item)
		}
		out[keys[i]] = raw
	}
	return out, nil
}

// Set stores a value with PX expiry semantics. A non-positive TTL stores the
// key without expiry, matching the database-backed store.
func (c *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.execute(ctx, [][]string{setCommand(key, value, ttl)})
	return err
}

// SetMany stores a batch of values in one pipelined round trip, every key
// carrying the same TTL.
func (c *RedisClient) SetMany(ctx context.Context, values map[string][]byte, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}

	commands := make([][]string, 0, len(values))
	for key, value := range values {
		commands = append(commands, setCommand(key, value, ttl))
	}
	_, err := c.execute(ctx, commands)
	return err
}

func setCommand(key string, value []byte, ttl time.Duration) []string {
	if ttl <= 0 {
		return []string{"SET", key, string(value)}
	}
	return []string{"SET", key, string(value), "PX", formatMillis(ttl)}
}

// Exists counts how many of the supplied keys are present.
func (c *RedisClient) Exists(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	resp, err := c.execute(ctx, [][]string{append([]string{"EXISTS"}, keys...)})
	if err != nil {
		return 0, err
	}
	return replyInt(resp[0])
}

// Delete removes one or more keys, ignoring missing keys.
func (c *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.execute(ctx, [][]string{append([]string{"DEL"}, keys...)})
	return err
}

// Keys expands a glob pattern to the matching concrete keys.
func (c *RedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	resp, err := c.execute(ctx, [][]string{{"KEYS", pattern}})
	if err != nil {
		return nil, err
	}
	items, ok := resp[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("redis: unexpected KEYS reply type %T", resp[0])
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		raw, ok := item.([]byte)
		if !ok {
			return nil, fmt.Errorf("redis: unexpected KEYS element type %T", item)
		}
		out = append(out, string(raw))
	}
	return out, nil
}

// execute pipelines one or more commands over the shared connection and
// returns one reply per command. Any transport error tears the connection
// down so the next call reconnects.
func (c *RedisClient) execute(ctx context.Context, commands [][]string) ([]interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnectionLocked(ctx); err != nil {
		return nil, err
	}

	deadline := deadlineFromContext(ctx, c.cfg.Timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.resetLocked()
		return nil, err
	}

	var buf strings.Builder
	for _, args := range commands {
		encodeCommand(&buf, args)
	}
	if _, err := io.WriteString(c.conn, buf.String()); err != nil {
		c.resetLocked()
		return nil, err
	}

	replies := make([]interface{}, len(commands))
	for i := range commands {
		reply, err := readReply(c.reader)
		if err != nil {
			c.resetLocked()
			return nil, err
		}
		replies[i] = reply
	}
	return replies, nil
}

func (c *RedisClient) ensureConnection(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ensureConnectionLocked(ctx)
}

func (c *RedisClient) ensureConnectionLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var (
		conn net.Conn
		err  error
	)

	if c.cfg.TLS {
		dialer := &tls.Dialer{NetDialer: &net.Dialer{}}
		conn, err = dialer.DialContext(ctx, "tcp", c.cfg.Address)
	} else {
		dialer := &net.Dialer{}
		conn, err = dialer.DialContext(ctx, "tcp", c.cfg.Address)
	}
	if err != nil {
		return err
	}

	reader := bufio.NewReader(conn)
	deadline := deadlineFromContext(ctx, c.cfg.Timeout)
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}

	if c.cfg.Password != "" || c.cfg.Username != "" {
		authArgs := []string{"AUTH"}
		if c.cfg.Username != "" {
			authArgs = append(authArgs, c.cfg.Username, c.cfg.Password)
		} else {
			authArgs = append(authArgs, c.cfg.Password)
		}
		if err := handshake(conn, reader, authArgs); err != nil {
			conn.Close()
			return fmt.Errorf("redis: AUTH failed: %w", err)
		}
	}

	if c.cfg.DB > 0 {
		if err := handshake(conn, reader, []string{"SELECT", strconv.Itoa(c.cfg.DB)}); err != nil {
			conn.Close()
			return fmt.Errorf("redis: SELECT failed: %w", err)
		}
	}

	// Clear deadlines; runtime commands set per-call deadlines.
	if err := conn.SetDeadline(time.Time{}); err != nil {
		conn.Close()
		return err
	}

	c.conn = conn
	c.reader = reader
	return nil
}

func (c *RedisClient) resetLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = nil
	c.reader = nil
}

// handshake issues a command during connection setup and requires an OK
// reply.
func handshake(conn net.Conn, reader *bufio.Reader, args []string) error {
	var buf strings.Builder
	encodeCommand(&buf, args)
	if _, err := io.WriteString(conn, buf.String()); err != nil {
		return err
	}
	reply, err := readReply(reader)
	if err != nil {
		return err
	}
	if s, ok := reply.(string); !ok || !strings.EqualFold(s, "OK") {
		return fmt.Errorf("unexpected reply %v", reply)
	}
	return nil
}

func deadlineFromContext(ctx context.Context, fallback time.Duration) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Now().Add(fallback)
}

func encodeCommand(buf *strings.Builder, args []string) {
	buf.WriteByte('*')
	buf.WriteString(strconv.Itoa(len(args)))
	buf.WriteString("\r\n")
	for _, arg := range args {
		buf.WriteByte('$')
		buf.WriteString(strconv.Itoa(len(arg)))
		buf.WriteString("\r\n")
		buf.WriteString(arg)
		buf.WriteString("\r\n")
	}
}

func readReply(r *bufio.Reader) (interface{}, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	switch prefix {
	case '+':
		return readLine(r)
	case '-':
		line, err := readLine(r)
		if err != nil {
			return nil, err
		}
		return nil, errors.New(line)
	case ':':
		line, err := readLine(r)
		if err != nil {
			return nil, err
		}
		return strconv.ParseInt(line, 10, 64)
	case '$':
		line, err := readLine(r)
		if err != nil {
			return nil, err
		}
		length, convErr := strconv.Atoi(line)
		if convErr != nil {
			return nil, convErr
		}
		if length == -1 {
			return nil, nil
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		if err := consumeCRLF(r); err != nil {
			return nil, err
		}
		return buf, nil
	case '*':
		line, err := readLine(r)
		if err != nil {
			return nil, err
		}
		count, convErr := strconv.Atoi(line)
		if convErr != nil {
			return nil, convErr
		}
		if count == -1 {
			return nil, nil
		}
		items := make([]interface{}, count)
		for i := 0; i < count; i++ {
			item, err := readReply(r)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return items, nil
	default:
		return nil, fmt.Errorf("redis: unexpected reply prefix %q", prefix)
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func consumeCRLF(r *bufio.Reader) error {
	first, err := r.ReadByte()
	if err != nil {
		return err
	}
	second, err := r.ReadByte()
	if err != nil {
		return err
	}
	if first != '\r' || second != '\n' {
		return errors.New("redis: expected CRLF")
	}
	return nil
}

func replyInt(reply interface{}) (int64, error) {
	switch v := reply.(type) {
	case int64:
		return v, nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("redis: unexpected integer reply type %T", v)
	}
}

func formatMillis(duration time.Duration) string {
	if duration <= 0 {
		return "0"
	}
	return strconv.FormatInt(duration.Milliseconds(), 10)
}
